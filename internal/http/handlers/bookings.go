package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
	"villabook/internal/http/middleware"
	"villabook/internal/services"
	"villabook/internal/utils"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	CheckIn         string `json:"check_in" binding:"required"`
	CheckOut        string `json:"check_out" binding:"required"`
	GuestCount      int    `json:"guest_count" binding:"required"`
	TotalPrice      *int64 `json:"total_price"`
	SpecialRequests string `json:"special_requests"`
}

// POST /api/bookings
func (d Deps) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "check_in", Msg: "must be YYYY-MM-DD"})
		return
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "check_out", Msg: "must be YYYY-MM-DD"})
		return
	}

	in := services.CreateInput{
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
	}
	if req.TotalPrice != nil {
		in.TotalPrice = *req.TotalPrice
	} else {
		in.TotalPrice = d.quote(checkIn, checkOut)
	}

	booking, err := d.bookingService(c).Create(middleware.GetRequestContext(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// quote derives the stay total from the fixed nightly rate plus tax.
func (d Deps) quote(checkIn, checkOut time.Time) int64 {
	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	base := nights * d.Env.NightlyRate
	return base + base*d.Env.TaxPercent/100
}

// GET /api/bookings
func (d Deps) ListMyBookings(c *gin.Context) {
	bookings, err := d.bookingService(c).ListMine(middleware.GetRequestContext(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": len(bookings), "bookings": bookings})
}

// GET /api/bookings/:id
func (d Deps) GetBooking(c *gin.Context) {
	booking, err := d.bookingService(c).Get(middleware.GetRequestContext(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// PATCH /api/bookings/:id
func (d Deps) UpdateBooking(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_input", "request body is required")
		return
	}

	upd, err := buildBookingPatch(raw)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	booking, err := d.bookingService(c).Update(middleware.GetRequestContext(c), c.Param("id"), upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// buildBookingPatch enforces the PATCH allow-list at the boundary: any key
// other than special_requests rejects the whole request.
func buildBookingPatch(raw []byte) (models.BookingUpdate, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.BookingUpdate{}, domain.ValidationError{Msg: "invalid request payload", Err: err}
	}

	var upd models.BookingUpdate
	for key, value := range payload {
		switch key {
		case "special_requests":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return models.BookingUpdate{}, domain.ValidationError{Field: "special_requests", Msg: "must be a string"}
			}
			upd.SpecialRequests = &s
		default:
			return models.BookingUpdate{}, domain.ValidationError{Field: key, Msg: "field cannot be updated"}
		}
	}
	return upd, nil
}

type customerInfoRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// POST /api/bookings/:id/customer-info
func (d Deps) AttachCustomerInfo(c *gin.Context) {
	var req customerInfoRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := d.bookingService(c).AttachCustomerInfo(middleware.GetRequestContext(c), c.Param("id"), models.CustomerInfo{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type paymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// POST /api/bookings/:id/payment-method
func (d Deps) SelectPaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := d.bookingService(c).SelectPaymentMethod(middleware.GetRequestContext(c), c.Param("id"), models.PaymentMethod(req.Method))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "payment_deadline": booking.PaymentDeadline})
}

type paymentProofRequest struct {
	ProofURL string `json:"proof_url" binding:"required"`
}

// POST /api/bookings/:id/payment-proof
func (d Deps) SubmitPaymentProof(c *gin.Context) {
	var req paymentProofRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := d.bookingService(c).SubmitPaymentProof(middleware.GetRequestContext(c), c.Param("id"), req.ProofURL)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// POST /api/bookings/:id/cancel
func (d Deps) CancelBooking(c *gin.Context) {
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

// GET /api/bookings/:id/confirmation
func (d Deps) GetBookingConfirmationPDF(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	svc := d.bookingService(c)

	booking, err := svc.Get(rc, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	docs := services.DocsService{Store: svc.Store, RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := docs.GenerateConfirmation(booking.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
