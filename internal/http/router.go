package api

import (
	"log"
	stdhttp "net/http"

	intconfig "villabook/internal/config"
	h "villabook/internal/http/handlers"
	"villabook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	deps := h.Deps{Env: env}
	auth := middleware.Auth([]byte(env.JWTSecret))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", deps.Register)
		authGroup.POST("/login", deps.Login)

		availability := api.Group("/availability")
		availability.GET("", deps.CheckAvailability)
		availability.GET("/calendar", deps.AvailabilityCalendar)

		bookings := api.Group("/bookings", auth)
		bookings.POST("", deps.CreateBooking)
		bookings.GET("", deps.ListMyBookings)
		bookings.GET("/:id", deps.GetBooking)
		bookings.PATCH("/:id", deps.UpdateBooking)
		bookings.POST("/:id/customer-info", deps.AttachCustomerInfo)
		bookings.POST("/:id/payment-method", deps.SelectPaymentMethod)
		bookings.POST("/:id/payment-proof", deps.SubmitPaymentProof)
		bookings.POST("/:id/cancel", deps.CancelBooking)
		bookings.GET("/:id/confirmation", deps.GetBookingConfirmationPDF)

		admin := api.Group("/admin", auth, middleware.RequireAdmin())
		admin.GET("/bookings", deps.AdminListBookings)
		admin.POST("/bookings/:id/confirm", deps.AdminConfirmBooking)
		admin.POST("/bookings/:id/reject", deps.AdminRejectBooking)
	}

	return r
}
