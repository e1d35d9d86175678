package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReceiptStaysWithinGatewayLimit(t *testing.T) {
	sessionID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	receipt := receiptFor(sessionID, now)

	// Razorpay rejects orders whose receipt exceeds 40 characters.
	if len(receipt) > 40 {
		t.Fatalf("receipt %q is %d characters, gateway limit is 40", receipt, len(receipt))
	}
	if !strings.HasPrefix(receipt, "rcpt_7c9e6679_") {
		t.Fatalf("receipt = %q, want rcpt_<id prefix>_<unix> form", receipt)
	}
}
