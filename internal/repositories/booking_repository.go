package repositories

import (
	"database/sql"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
)

const bookingColumns = `id, user_id, guest_name, guest_email, guest_phone,
	check_in, check_out, guest_count, total_price, payment_method, status,
	payment_deadline, payment_proof_url, special_requests, cancellation_reason,
	cancelled_at, refund_amount, version, created_at, updated_at`

// BookingRepository persists bookings in MySQL. Save enforces optimistic
// concurrency on the version column.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) Create(b *models.Booking) error {
	_, err := r.DB.Exec(`INSERT INTO bookings
		(id, user_id, guest_name, guest_email, guest_phone,
		 check_in, check_out, guest_count, total_price, payment_method, status,
		 payment_deadline, payment_proof_url, special_requests, cancellation_reason,
		 cancelled_at, refund_amount, version, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.UserID, b.Customer.Name, b.Customer.Email, b.Customer.Phone,
		b.Dates.CheckIn, b.Dates.CheckOut, b.GuestCount, b.TotalPrice,
		string(b.PaymentMethod), string(b.Status),
		b.PaymentDeadline, b.PaymentProofURL, b.SpecialRequests, b.CancellationReason,
		b.CancelledAt, b.RefundAmount, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return domain.InternalError{Msg: "failed to create booking", Err: err}
	}
	return nil
}

func (r BookingRepository) GetByID(id string) (models.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to load booking", Err: err}
	}
	return b, nil
}

// Save writes all mutable fields and bumps version. A stale version loses
// the race and reports VersionConflictError so the caller can re-read.
func (r BookingRepository) Save(b *models.Booking) error {
	res, err := r.DB.Exec(`UPDATE bookings SET
		guest_name=?, guest_email=?, guest_phone=?,
		guest_count=?, total_price=?, payment_method=?, status=?,
		payment_deadline=?, payment_proof_url=?, special_requests=?,
		cancellation_reason=?, cancelled_at=?, refund_amount=?,
		version=version+1, updated_at=?
		WHERE id=? AND version=?`,
		b.Customer.Name, b.Customer.Email, b.Customer.Phone,
		b.GuestCount, b.TotalPrice, string(b.PaymentMethod), string(b.Status),
		b.PaymentDeadline, b.PaymentProofURL, b.SpecialRequests,
		b.CancellationReason, b.CancelledAt, b.RefundAmount,
		b.UpdatedAt, b.ID, b.Version,
	)
	if err != nil {
		return domain.InternalError{Msg: "failed to save booking", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if affected == 0 {
		var exists int
		if scanErr := r.DB.QueryRow(`SELECT 1 FROM bookings WHERE id=? LIMIT 1`, b.ID).Scan(&exists); scanErr == sql.ErrNoRows {
			return domain.NotFoundError{Resource: "booking"}
		}
		return domain.VersionConflictError{Resource: "booking"}
	}
	b.Version++
	return nil
}

// FindOverlapping returns non-cancelled bookings whose half-open stay
// interval intersects the given range. excludeID lets a re-check skip the
// booking's own record.
func (r BookingRepository) FindOverlapping(dr models.DateRange, excludeID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status <> ? AND check_in < ? AND ? < check_out`
	args := []any{string(models.StatusCancelled), dr.CheckOut, dr.CheckIn}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	return r.queryBookings(query, args...)
}

func (r BookingRepository) ListByUser(userID string) ([]models.Booking, error) {
	return r.queryBookings(`SELECT `+bookingColumns+` FROM bookings
		WHERE user_id=? ORDER BY created_at DESC`, userID)
}

func (r BookingRepository) ListAll() ([]models.Booking, error) {
	return r.queryBookings(`SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`)
}

func (r BookingRepository) queryBookings(query string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to query bookings", Err: err}
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to scan booking", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b        models.Booking
		method   string
		status   string
		deadline sql.NullTime
		cancAt   sql.NullTime
		refund   sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.Customer.Name, &b.Customer.Email, &b.Customer.Phone,
		&b.Dates.CheckIn, &b.Dates.CheckOut, &b.GuestCount, &b.TotalPrice,
		&method, &status,
		&deadline, &b.PaymentProofURL, &b.SpecialRequests, &b.CancellationReason,
		&cancAt, &refund, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.PaymentMethod = models.PaymentMethod(method)
	b.Status = models.BookingStatus(status)
	if deadline.Valid {
		t := deadline.Time
		b.PaymentDeadline = &t
	}
	if cancAt.Valid {
		t := cancAt.Time
		b.CancelledAt = &t
	}
	if refund.Valid {
		v := refund.Int64
		b.RefundAmount = &v
	}
	return b, nil
}
