package services

import (
	"bytes"
	"testing"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfirmationRequiresConfirmedBooking(t *testing.T) {
	store := newMemStore()
	svc := newService(store, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	b, err := svc.Create(guestCtx, stay(1, 5))
	require.NoError(t, err)

	docs := DocsService{Store: store}
	_, _, err = docs.GenerateConfirmation(b.ID)
	assert.True(t, domain.IsState(err), "draft booking has no confirmation, got %v", err)

	_, err = svc.AttachCustomerInfo(guestCtx, b.ID, models.CustomerInfo{Name: "Somchai", Email: "somchai@example.com", Phone: "0812345678"})
	require.NoError(t, err)
	_, err = svc.SelectPaymentMethod(guestCtx, b.ID, models.PaymentQRTransfer)
	require.NoError(t, err)
	_, err = svc.SubmitPaymentProof(guestCtx, b.ID, "https://cdn.example.com/slips/abc.jpg")
	require.NoError(t, err)
	_, err = svc.Confirm(adminCtx, b.ID)
	require.NoError(t, err)

	pdfBytes, filename, err := docs.GenerateConfirmation(b.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")), "output must be a PDF document")
	assert.Contains(t, filename, b.ID)
}

func TestGenerateConfirmationUnknownBooking(t *testing.T) {
	docs := DocsService{Store: newMemStore()}
	_, _, err := docs.GenerateConfirmation("missing")
	assert.True(t, domain.IsNotFound(err))
}
