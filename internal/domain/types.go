package domain

// Roles recognised by the engine. Admin doubles as the payment reviewer.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// RequestContext carries the authenticated caller identity into every
// mutating operation. The engine trusts it; issuing it is the auth
// middleware's job.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the caller holds the reviewer role.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == RoleAdmin
}
