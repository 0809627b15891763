package services

import (
	"sort"
	"sync"
	"testing"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory BookingStore with the same version semantics as
// the SQL repository.
type memStore struct {
	mu    sync.Mutex
	items map[string]models.Booking
}

func newMemStore() *memStore {
	return &memStore{items: map[string]models.Booking{}}
}

func (m *memStore) Create(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[b.ID] = *b
	return nil
}

func (m *memStore) GetByID(id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (m *memStore) Save(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[b.ID]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	if cur.Version != b.Version {
		return domain.VersionConflictError{Resource: "booking"}
	}
	b.Version++
	m.items[b.ID] = *b
	return nil
}

func (m *memStore) FindOverlapping(dr models.DateRange, excludeID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.items {
		if b.ID == excludeID || b.Status == models.StatusCancelled {
			continue
		}
		if b.Dates.Overlaps(dr) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListByUser(userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListAll() ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.items {
		out = append(out, b)
	}
	return out, nil
}

var (
	guestCtx = domain.RequestContext{UserID: "guest-1", Role: domain.RoleGuest}
	otherCtx = domain.RequestContext{UserID: "guest-2", Role: domain.RoleGuest}
	adminCtx = domain.RequestContext{UserID: "admin-1", Role: domain.RoleAdmin}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newService(store BookingStore, now time.Time) BookingService {
	return BookingService{Store: store, Now: fixedClock(now)}
}

func stay(inDay, outDay int) CreateInput {
	return CreateInput{
		CheckIn:    time.Date(2024, 6, inDay, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 6, outDay, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
		TotalPrice: 1196,
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(newMemStore(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	in := stay(5, 1)
	_, err := svc.Create(guestCtx, in)
	assert.True(t, domain.IsValidation(err), "inverted dates: %v", err)

	in = stay(1, 5)
	in.GuestCount = 0
	_, err = svc.Create(guestCtx, in)
	assert.True(t, domain.IsValidation(err), "guest count low: %v", err)

	in = stay(1, 5)
	in.GuestCount = 9
	_, err = svc.Create(guestCtx, in)
	assert.True(t, domain.IsValidation(err), "guest count high: %v", err)

	in = stay(1, 5)
	in.TotalPrice = -1
	_, err = svc.Create(guestCtx, in)
	assert.True(t, domain.IsValidation(err), "negative price: %v", err)
}

func TestCreateConflictOnOverlap(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	_, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	_, err = svc.Create(otherCtx, stay(3, 7))
	assert.True(t, domain.IsConflict(err), "overlapping create must conflict, got %v", err)

	// same-day turnover is allowed
	_, err = svc.Create(otherCtx, stay(5, 8))
	assert.NoError(t, err)
}

func TestCreateConcurrentOverlapOnlyOneWins(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(guestCtx, stay(10, 12))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else if !domain.IsConflict(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent create may win")
}

func TestFullLifecycle(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, b.Status)
	assert.Equal(t, int64(1196), b.TotalPrice)

	info := models.CustomerInfo{Name: "Somchai", Email: "somchai@example.com", Phone: "+66 81 234 5678"}
	b, err = svc.AttachCustomerInfo(guestCtx, b.ID, info)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingCustomerInfo, b.Status)

	b, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentQRTransfer)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingPayment, b.Status)
	require.NotNil(t, b.PaymentDeadline)
	assert.Equal(t, now.Add(24*time.Hour), *b.PaymentDeadline)

	b, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/slips/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, b.Status)

	b, err = svc.Confirm(adminCtx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
}

func TestAttachCustomerInfoIdempotency(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	info := models.CustomerInfo{Name: "Somchai", Email: "somchai@example.com", Phone: "0812345678"}
	first, err := svc.AttachCustomerInfo(guestCtx, b.ID, info)
	require.NoError(t, err)

	// identical re-submission is a no-op, updatedAt untouched
	svc.Now = fixedClock(now.Add(time.Hour))
	again, err := svc.AttachCustomerInfo(guestCtx, b.ID, info)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, first.Status, again.Status)

	// a different submission is rejected
	info.Phone = "0899999999"
	_, err = svc.AttachCustomerInfo(guestCtx, b.ID, info)
	assert.True(t, domain.IsState(err), "changed info must be rejected, got %v", err)
}

func TestSelectPaymentMethodRequiresCustomerInfo(t *testing.T) {
	store := newMemStore()
	svc := newService(store, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	_, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentBankTransfer)
	assert.True(t, domain.IsState(err), "draft booking cannot pick a method, got %v", err)

	_, err = svc.AttachCustomerInfo(guestCtx, b.ID, models.CustomerInfo{Name: "A", Email: "a@b.c", Phone: "1"})
	require.NoError(t, err)

	_, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentMethod("cash"))
	assert.True(t, domain.IsValidation(err), "unknown method, got %v", err)
}

func TestSubmitProofAfterDeadlineExpires(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)
	_, err = svc.AttachCustomerInfo(guestCtx, b.ID, models.CustomerInfo{Name: "A", Email: "a@b.c", Phone: "1"})
	require.NoError(t, err)
	_, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentBankTransfer)
	require.NoError(t, err)

	svc.Now = fixedClock(now.Add(25 * time.Hour))
	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/slips/late.jpg")
	assert.True(t, domain.IsWindowExpired(err), "late proof must report expiry, got %v", err)

	stored, err := store.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, stored.Status, "booking must land in expired, never pending review")

	// re-checking after expiry never un-expires
	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/slips/late.jpg")
	assert.True(t, domain.IsWindowExpired(err))
}

func TestSubmitProofValidation(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(store, now)

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)
	_, err = svc.AttachCustomerInfo(guestCtx, b.ID, models.CustomerInfo{Name: "A", Email: "a@b.c", Phone: "1"})
	require.NoError(t, err)
	_, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentBankTransfer)
	require.NoError(t, err)

	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "")
	assert.True(t, domain.IsValidation(err), "empty ref: %v", err)

	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "http://cdn.example.com/slip.jpg")
	assert.True(t, domain.IsValidation(err), "insecure scheme: %v", err)

	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/slip.jpg")
	require.NoError(t, err)

	// proof is immutable once submitted
	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/other.jpg")
	assert.True(t, domain.IsAlreadySubmitted(err), "replacing proof must fail, got %v", err)
}

func TestCancelComputesRefundOnce(t *testing.T) {
	store := newMemStore()
	now := time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC) // 10 days before check-in
	svc := newService(store, now)

	b, err := svc.Create(guestCtx, CreateInput{
		CheckIn:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
		TotalPrice: 1196,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(guestCtx, b.ID, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.RefundAmount)
	assert.Equal(t, int64(1196), *cancelled.RefundAmount)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, now, *cancelled.CancelledAt)

	// second cancel is rejected, refund untouched
	svc.Now = fixedClock(now.AddDate(0, 0, 8))
	_, err = svc.Cancel(guestCtx, b.ID, "again")
	assert.True(t, domain.IsState(err), "double cancel must fail, got %v", err)

	stored, err := store.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1196), *stored.RefundAmount)

	// cancelled dates are bookable again
	_, err = svc.Create(otherCtx, stay(1, 5))
	assert.NoError(t, err)
}

func TestCancelRefundTiers(t *testing.T) {
	checkIn := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		now    time.Time
		refund int64
	}{
		{"ten days out", checkIn.AddDate(0, 0, -10), 1196},
		{"five days out", checkIn.AddDate(0, 0, -5), 598},
		{"one day out", checkIn.AddDate(0, 0, -1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newService(store, tt.now)
			b, err := svc.Create(guestCtx, CreateInput{
				CheckIn:    checkIn,
				CheckOut:   checkIn.AddDate(0, 0, 4),
				GuestCount: 2,
				TotalPrice: 1196,
			})
			require.NoError(t, err)

			cancelled, err := svc.Cancel(guestCtx, b.ID, "")
			require.NoError(t, err)
			require.NotNil(t, cancelled.RefundAmount)
			assert.Equal(t, tt.refund, *cancelled.RefundAmount)
		})
	}
}

func TestOwnershipEnforced(t *testing.T) {
	store := newMemStore()
	svc := newService(store, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	_, err = svc.Get(otherCtx, b.ID)
	assert.True(t, domain.IsForbidden(err), "stranger read: %v", err)

	_, err = svc.Cancel(otherCtx, b.ID, "not mine")
	assert.True(t, domain.IsForbidden(err), "stranger cancel: %v", err)

	// admin may act on any booking
	_, err = svc.Get(adminCtx, b.ID)
	assert.NoError(t, err)

	// confirm is reviewer-only even for the owner
	_, err = svc.Confirm(guestCtx, b.ID)
	assert.True(t, domain.IsForbidden(err), "owner confirm: %v", err)
}

func TestUpdateAllowList(t *testing.T) {
	store := newMemStore()
	svc := newService(store, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	note := "late check-in please"
	updated, err := svc.Update(guestCtx, b.ID, models.BookingUpdate{SpecialRequests: &note})
	require.NoError(t, err)
	assert.Equal(t, note, updated.SpecialRequests)

	_, err = svc.Cancel(guestCtx, b.ID, "")
	require.NoError(t, err)

	_, err = svc.Update(guestCtx, b.ID, models.BookingUpdate{SpecialRequests: &note})
	assert.True(t, domain.IsState(err), "cancelled booking update: %v", err)
}

func TestGetUnknownBooking(t *testing.T) {
	svc := newService(newMemStore(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	_, err := svc.Get(guestCtx, "missing")
	assert.True(t, domain.IsNotFound(err))
}
