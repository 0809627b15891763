package repositories

import (
	"database/sql"
	"strings"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
)

// UserRepository backs the auth endpoints.
type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) Create(u models.User, passwordHash string) error {
	_, err := r.DB.Exec(`INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.Phone, passwordHash, u.Role, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "user", Msg: "email already registered"}
		}
		return domain.InternalError{Msg: "failed to create user", Err: err}
	}
	return nil
}

// GetByEmail returns the user and its password hash for credential checks.
func (r UserRepository) GetByEmail(email string) (models.User, string, error) {
	var (
		u    models.User
		hash string
	)
	err := r.DB.QueryRow(`SELECT id, name, email, phone, password_hash, role, created_at
		FROM users WHERE email=? LIMIT 1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &hash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, "", domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "failed to load user", Err: err}
	}
	return u, hash, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "Error 1062")
}
