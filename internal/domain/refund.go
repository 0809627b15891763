package domain

import "time"

// Refund tiers by whole days remaining until check-in, day count rounded up:
// more than 7 days -> full refund, 3-7 days -> half, under 3 days -> nothing.
// Cancelling at or after check-in refunds nothing.
func Refund(cancelledAt, checkIn time.Time, totalPrice int64) int64 {
	days := DaysUntil(cancelledAt, checkIn)
	switch {
	case days > 7:
		return totalPrice
	case days >= 3:
		return totalPrice / 2
	default:
		return 0
	}
}

// DaysUntil is the ceiling of (checkIn - from) in whole days. Zero or
// negative remainders stay as-is so past check-ins never earn a refund.
func DaysUntil(from, checkIn time.Time) int {
	d := checkIn.Sub(from)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
