package services

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
	"villabook/internal/utils"

	"github.com/google/uuid"
)

// BookingStore is the repository surface the lifecycle needs.
type BookingStore interface {
	Create(b *models.Booking) error
	GetByID(id string) (models.Booking, error)
	Save(b *models.Booking) error
	FindOverlapping(dr models.DateRange, excludeID string) ([]models.Booking, error)
	ListByUser(userID string) ([]models.Booking, error)
	ListAll() ([]models.Booking, error)
}

// createMu serializes the availability check and the insert so two
// concurrent creates for overlapping ranges cannot both pass the check.
// One mutex is enough: the system has a single bookable unit.
var createMu sync.Mutex

// BookingService owns the booking state machine. Now and OnChange are
// injectable for tests and cache invalidation.
type BookingService struct {
	Store         BookingStore
	PaymentWindow time.Duration
	RequestID     string
	Now           func() time.Time
	OnChange      func(models.DateRange)
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) window() time.Duration {
	if s.PaymentWindow > 0 {
		return s.PaymentWindow
	}
	return 24 * time.Hour
}

func (s BookingService) changed(dr models.DateRange) {
	if s.OnChange != nil {
		s.OnChange(dr)
	}
}

// CreateInput carries the fields a guest supplies for a new reservation.
type CreateInput struct {
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	TotalPrice      int64
	SpecialRequests string
}

// Create validates the request, checks availability and inserts a draft
// booking. The check and the insert run under one critical section.
func (s BookingService) Create(rc domain.RequestContext, in CreateInput) (models.Booking, error) {
	dr, err := models.NewDateRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return models.Booking{}, err
	}
	if in.GuestCount < models.MinGuests || in.GuestCount > models.MaxGuests {
		return models.Booking{}, domain.ValidationError{Field: "guest_count", Msg: "must be between 1 and 8"}
	}
	if in.TotalPrice < 0 {
		return models.Booking{}, domain.ValidationError{Field: "total_price", Msg: "must not be negative"}
	}
	if len(in.SpecialRequests) > models.MaxNoteLength {
		return models.Booking{}, domain.ValidationError{Field: "special_requests", Msg: "must not exceed 500 characters"}
	}

	createMu.Lock()
	defer createMu.Unlock()

	overlapping, err := s.Store.FindOverlapping(dr, "")
	if err != nil {
		return models.Booking{}, err
	}
	if len(overlapping) > 0 {
		return models.Booking{}, domain.ConflictError{Resource: "dates", Msg: "selected dates are not available"}
	}

	now := s.now()
	b := models.Booking{
		ID:              uuid.NewString(),
		UserID:          rc.UserID,
		Dates:           dr,
		GuestCount:      in.GuestCount,
		TotalPrice:      in.TotalPrice,
		SpecialRequests: in.SpecialRequests,
		Status:          models.StatusDraft,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.Create(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "create", "booking_id="+b.ID)
	s.changed(b.Dates)
	return b, nil
}

// Get loads a booking for its owner or an admin, applying lazy expiry.
func (s BookingService) Get(rc domain.RequestContext, id string) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// ListMine returns the caller's bookings, newest first.
func (s BookingService) ListMine(rc domain.RequestContext) ([]models.Booking, error) {
	return s.Store.ListByUser(rc.UserID)
}

// ListAll is the reviewer's view over every booking.
func (s BookingService) ListAll(rc domain.RequestContext) ([]models.Booking, error) {
	if !rc.IsAdmin() {
		return nil, domain.ForbiddenError{Msg: "reviewer role required"}
	}
	return s.Store.ListAll()
}

// AttachCustomerInfo records guest contact details. Re-submitting identical
// data is a no-op; a second, different submission is rejected.
func (s BookingService) AttachCustomerInfo(rc domain.RequestContext, id string, info models.CustomerInfo) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}

	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	if info.Name == "" || info.Email == "" || info.Phone == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer", Msg: "name, email and phone are required"}
	}

	switch b.Status {
	case models.StatusDraft:
		// first submission
	case models.StatusAwaitingCustomerInfo:
		if b.Customer == info {
			return b, nil
		}
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "customer info cannot be changed after submission"}
	default:
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "customer info can only be attached before payment"}
	}

	b.Customer = info
	b.Status = models.StatusAwaitingCustomerInfo
	b.UpdatedAt = s.now()
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "customer_info", "booking_id="+b.ID)
	return b, nil
}

// SelectPaymentMethod picks the transfer method and starts the payment
// window clock.
func (s BookingService) SelectPaymentMethod(rc domain.RequestContext, id string, method models.PaymentMethod) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}
	if !models.ValidPaymentMethod(method) {
		return models.Booking{}, domain.ValidationError{Field: "payment_method", Msg: "must be bank_transfer or qr_transfer"}
	}
	if b.Status != models.StatusAwaitingCustomerInfo {
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "payment method can only be selected after customer info"}
	}

	now := s.now()
	deadline := now.Add(s.window())
	b.PaymentMethod = method
	b.PaymentDeadline = &deadline
	b.Status = models.StatusAwaitingPayment
	b.UpdatedAt = now
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "payment_method", "booking_id="+b.ID+" method="+string(method))
	return b, nil
}

// SubmitPaymentProof records the uploaded slip reference and moves the
// booking to review. The proof is immutable once set.
func (s BookingService) SubmitPaymentProof(rc domain.RequestContext, id, proofRef string) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}
	if b.PaymentProofURL != "" {
		return models.Booking{}, domain.AlreadySubmittedError{}
	}
	if b.Status == models.StatusExpired {
		return models.Booking{}, domain.WindowExpiredError{}
	}
	if b.Status != models.StatusAwaitingPayment {
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "payment proof requires a pending payment"}
	}
	if err := validateProofRef(proofRef); err != nil {
		return models.Booking{}, err
	}

	b.PaymentProofURL = strings.TrimSpace(proofRef)
	b.Status = models.StatusPendingReview
	b.UpdatedAt = s.now()
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "payment_proof", "booking_id="+b.ID)
	return b, nil
}

// Confirm is the reviewer's approval of a submitted proof.
func (s BookingService) Confirm(rc domain.RequestContext, id string) (models.Booking, error) {
	if !rc.IsAdmin() {
		return models.Booking{}, domain.ForbiddenError{Msg: "reviewer role required"}
	}
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status != models.StatusPendingReview {
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "only bookings under review can be confirmed"}
	}

	b.Status = models.StatusConfirmed
	b.UpdatedAt = s.now()
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "confirm", "booking_id="+b.ID)
	return b, nil
}

// Cancel ends a booking from any non-terminal state and computes the
// refund. Reject by the reviewer is the same transition.
func (s BookingService) Cancel(rc domain.RequestContext, id, reason string) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}
	if len(reason) > models.MaxNoteLength {
		return models.Booking{}, domain.ValidationError{Field: "reason", Msg: "must not exceed 500 characters"}
	}
	if b.Status.Terminal() {
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "booking is already closed"}
	}

	now := s.now()
	refund := domain.Refund(now, b.Dates.CheckIn, b.TotalPrice)
	b.Status = models.StatusCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	b.RefundAmount = &refund
	b.UpdatedAt = now
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "cancel", "booking_id="+b.ID)
	s.changed(b.Dates)
	return b, nil
}

// Update applies the allow-listed patch. Anything beyond special requests
// is rejected at the handler boundary before reaching here.
func (s BookingService) Update(rc domain.RequestContext, id string, upd models.BookingUpdate) (models.Booking, error) {
	b, err := s.load(id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := s.authorize(rc, b); err != nil {
		return models.Booking{}, err
	}
	if b.Status == models.StatusCancelled || b.Status == models.StatusExpired {
		return models.Booking{}, domain.StateError{From: string(b.Status), Msg: "closed bookings cannot be updated"}
	}
	if upd.SpecialRequests == nil {
		return b, nil
	}
	if len(*upd.SpecialRequests) > models.MaxNoteLength {
		return models.Booking{}, domain.ValidationError{Field: "special_requests", Msg: "must not exceed 500 characters"}
	}

	b.SpecialRequests = *upd.SpecialRequests
	b.UpdatedAt = s.now()
	if err := s.Store.Save(&b); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "update", "booking_id="+b.ID)
	return b, nil
}

// load fetches a booking and applies lazy payment-window expiry: the first
// read past the deadline flips awaiting_payment to expired. Losing the
// persist race is fine, the winner made the same transition.
func (s BookingService) load(id string) (models.Booking, error) {
	b, err := s.Store.GetByID(id)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status == models.StatusAwaitingPayment && b.PaymentDeadline != nil && !b.PaymentWindowOpen(s.now()) {
		b.Status = models.StatusExpired
		b.UpdatedAt = s.now()
		if err := s.Store.Save(&b); err != nil {
			if domain.IsVersionConflict(err) {
				return s.Store.GetByID(id)
			}
			return models.Booking{}, err
		}
		utils.LogEvent(s.RequestID, "booking", "expire", "booking_id="+b.ID)
		s.changed(b.Dates)
	}
	return b, nil
}

func (s BookingService) authorize(rc domain.RequestContext, b models.Booking) error {
	if rc.IsAdmin() || rc.UserID == b.UserID {
		return nil
	}
	return domain.ForbiddenError{Msg: "not your booking"}
}

// validateProofRef checks the stored slip reference: non-empty, and when
// it looks like a URL it must use a secure scheme.
func validateProofRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.ValidationError{Field: "proof", Msg: "reference is required"}
	}
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return domain.ValidationError{Field: "proof", Msg: "must be a secure https URL"}
		}
	}
	return nil
}
