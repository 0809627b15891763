package services

import (
	"bytes"
	"fmt"
	"strings"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
	"villabook/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the booking confirmation PDF handed to the guest
// after review approval.
type DocsService struct {
	Store     BookingStore
	RequestID string
}

func (s DocsService) GenerateConfirmation(id string) ([]byte, string, error) {
	b, err := s.Store.GetByID(id)
	if err != nil {
		return nil, "", err
	}
	if b.Status != models.StatusConfirmed {
		return nil, "", domain.StateError{From: string(b.Status), Msg: "only confirmed bookings have a confirmation document"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_confirmation", "booking_id="+b.ID)
	return buildConfirmationPDF(b)
}

func buildConfirmationPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Ref    : %s", b.ID),
		fmt.Sprintf("Guest          : %s", safe(b.Customer.Name, "-")),
		fmt.Sprintf("Email          : %s", safe(b.Customer.Email, "-")),
		fmt.Sprintf("Phone          : %s", safe(b.Customer.Phone, "-")),
		fmt.Sprintf("Check-in       : %s", utils.FormatDate(b.Dates.CheckIn)),
		fmt.Sprintf("Check-out      : %s", utils.FormatDate(b.Dates.CheckOut)),
		fmt.Sprintf("Nights         : %d", b.Dates.Nights()),
		fmt.Sprintf("Guests         : %d", b.GuestCount),
		fmt.Sprintf("Payment        : %s", safe(string(b.PaymentMethod), "-")),
		fmt.Sprintf("Total          : %s", utils.FormatBaht(b.TotalPrice)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	if b.SpecialRequests != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Special Requests")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, b.SpecialRequests, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this confirmation at check-in. Check-in from 15:00, check-out by 11:00.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("CONFIRMATION_%s.pdf", safeFilenamePart(b.ID))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-")
	return replacer.Replace(strings.TrimSpace(s))
}
