package handlers

import (
	"net/http"

	"villabook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/bookings
func (d Deps) AdminListBookings(c *gin.Context) {
	bookings, err := d.bookingService(c).ListAll(middleware.GetRequestContext(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": len(bookings), "bookings": bookings})
}

// POST /api/admin/bookings/:id/confirm
func (d Deps) AdminConfirmBooking(c *gin.Context) {
	booking, err := d.bookingService(c).Confirm(middleware.GetRequestContext(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// POST /api/admin/bookings/:id/reject
// Reject is cancel invoked by the reviewer after slip review.
func (d Deps) AdminRejectBooking(c *gin.Context) {
	var req cancelRequest
	if c.Request.Body != nil {
		_ = c.ShouldBindJSON(&req)
	}

	booking, err := d.bookingService(c).Cancel(middleware.GetRequestContext(c), c.Param("id"), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "refund_amount": booking.RefundAmount})
}
