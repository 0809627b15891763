package services

import (
	"context"
	"encoding/json"
	"time"

	"villabook/internal/domain/models"
	"villabook/internal/utils"

	"github.com/redis/go-redis/v9"
)

const calendarTTL = 5 * time.Minute

// AvailabilityService answers "can this range be booked" against the set
// of non-cancelled bookings. The month calendar is cached in Redis when a
// client is configured; Cache may be nil.
type AvailabilityService struct {
	Store BookingStore
	Cache *redis.Client
}

// IsAvailable applies the half-open overlap rule. excludeID lets an
// update re-check skip the booking's own record.
func (s AvailabilityService) IsAvailable(dr models.DateRange, excludeID string) (bool, error) {
	overlapping, err := s.Store.FindOverlapping(dr, excludeID)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// Calendar maps each date of the month to whether that night is free.
// The value for a date covers the night starting on it, so a checkout day
// shows free for the departing booking.
func (s AvailabilityService) Calendar(ctx context.Context, year int, month time.Month) (map[string]bool, error) {
	key := "availability:calendar:" + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")

	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, key).Result(); err == nil {
			var cached map[string]bool
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	monthRange := models.DateRange{CheckIn: first, CheckOut: next}

	booked, err := s.Store.FindOverlapping(monthRange, "")
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		night := models.DateRange{CheckIn: d, CheckOut: d.AddDate(0, 0, 1)}
		free := true
		for _, b := range booked {
			if b.Dates.Overlaps(night) {
				free = false
				break
			}
		}
		out[utils.FormatDate(d)] = free
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = s.Cache.Set(ctx, key, raw, calendarTTL).Err()
		}
	}
	return out, nil
}

// Invalidate drops every cached calendar month touched by the range.
func (s AvailabilityService) Invalidate(ctx context.Context, dr models.DateRange) {
	if s.Cache == nil {
		return
	}
	for d := time.Date(dr.CheckIn.Year(), dr.CheckIn.Month(), 1, 0, 0, 0, 0, time.UTC); !d.After(dr.CheckOut); d = d.AddDate(0, 1, 0) {
		_ = s.Cache.Del(ctx, "availability:calendar:"+d.Format("2006-01")).Err()
	}
}
