package models

import (
	"time"

	"villabook/internal/domain"
)

type BookingStatus string

const (
	StatusDraft                BookingStatus = "draft"
	StatusAwaitingCustomerInfo BookingStatus = "awaiting_customer_info"
	StatusAwaitingPayment      BookingStatus = "awaiting_payment"
	StatusPendingReview        BookingStatus = "pending_review"
	StatusConfirmed            BookingStatus = "confirmed"
	StatusCancelled            BookingStatus = "cancelled"
	StatusExpired              BookingStatus = "expired"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentQRTransfer   PaymentMethod = "qr_transfer"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentBankTransfer || m == PaymentQRTransfer
}

const (
	MinGuests     = 1
	MaxGuests     = 8
	MaxNoteLength = 500
)

// DateRange is a half-open stay interval [CheckIn, CheckOut). A checkout on
// the same day as another booking's check-in is not a conflict.
type DateRange struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}

func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	if !checkOut.After(checkIn) {
		return DateRange{}, domain.ValidationError{Field: "check_out", Msg: "must be after check-in"}
	}
	return DateRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// Overlaps implements the half-open interval test: [a1,a2) and [b1,b2)
// overlap iff a1 < b2 && b1 < a2.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Nights counts whole nights in the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// CustomerInfo is the guest contact block attached after the draft step.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Empty reports whether no customer info has been attached yet.
func (ci CustomerInfo) Empty() bool {
	return ci.Name == "" && ci.Email == "" && ci.Phone == ""
}

// Booking is the single authoritative record of a reservation. Terminal
// bookings are retained for audit, never deleted.
type Booking struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId"`
	Customer           CustomerInfo  `json:"customer"`
	Dates              DateRange     `json:"dates"`
	GuestCount         int           `json:"guestCount"`
	TotalPrice         int64         `json:"totalPrice"`
	PaymentMethod      PaymentMethod `json:"paymentMethod,omitempty"`
	Status             BookingStatus `json:"status"`
	PaymentDeadline    *time.Time    `json:"paymentDeadline,omitempty"`
	PaymentProofURL    string        `json:"paymentProofUrl,omitempty"`
	SpecialRequests    string        `json:"specialRequests,omitempty"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	RefundAmount       *int64        `json:"refundAmount,omitempty"`
	Version            int64         `json:"-"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// PaymentWindowOpen reports whether a proof may still be submitted at now.
func (b Booking) PaymentWindowOpen(now time.Time) bool {
	if b.Status != StatusAwaitingPayment || b.PaymentDeadline == nil {
		return false
	}
	return !now.After(*b.PaymentDeadline)
}

// BookingUpdate is the allow-listed PATCH shape. Fields are pointers so
// key presence is distinguishable from an empty value.
type BookingUpdate struct {
	SpecialRequests *string
}
