package handlers

import (
	"database/sql"
	"net/http"

	intconfig "villabook/internal/config"
	"villabook/internal/domain/models"
	"villabook/internal/http/middleware"
	"villabook/internal/repositories"
	"villabook/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps wires shared infrastructure into the handler set. Nil DB/Cache fall
// back to the package-level connections from config.
type Deps struct {
	Env   intconfig.Env
	DB    *sql.DB
	Cache *redis.Client
}

func (d Deps) db() *sql.DB {
	if d.DB != nil {
		return d.DB
	}
	return intconfig.DB
}

func (d Deps) cache() *redis.Client {
	if d.Cache != nil {
		return d.Cache
	}
	return intconfig.Redis
}

func (d Deps) bookingService(c *gin.Context) services.BookingService {
	avail := d.availabilityService()
	return services.BookingService{
		Store:         repositories.BookingRepository{DB: d.db()},
		PaymentWindow: d.Env.PaymentWindow,
		RequestID:     middleware.GetRequestID(c),
		OnChange: func(dr models.DateRange) {
			avail.Invalidate(c.Request.Context(), dr)
		},
	}
}

func (d Deps) availabilityService() services.AvailabilityService {
	return services.AvailabilityService{
		Store: repositories.BookingRepository{DB: d.db()},
		Cache: d.cache(),
	}
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "request body is required")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "invalid request payload")
		return false
	}
	return true
}
