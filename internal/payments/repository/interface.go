package repository

import (
	"context"

	"github.com/google/uuid"
)

// Payment record statuses. A record is created when the gateway order is
// created and moves exactly once to a terminal status.
const (
	StatusCreated            = "created"
	StatusPaid               = "paid"
	StatusCancelled          = "cancelled"
	StatusFailed             = "failed"
	StatusVerificationFailed = "verification_failed"
)

// Payment is a persisted gateway order and its outcome.
type Payment struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"sessionId"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	OrderID     string     `json:"orderId"`
	PaymentID   string     `json:"paymentId,omitempty"`
	AmountPaise int64      `json:"amountPaise"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	FailureNote string     `json:"failureNote,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// CreateParams records a freshly created gateway order.
type CreateParams struct {
	SessionID   uuid.UUID
	LeadID      *uuid.UUID
	OrderID     string
	AmountPaise int64
	Currency    string
}

// ListParams filters the admin payment listing.
type ListParams struct {
	Status   string
	Page     int
	PageSize int
}

// Repository defines payment persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (Payment, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) (Payment, error)
	MarkTerminal(ctx context.Context, orderID, status, failureNote string) (Payment, error)
	List(ctx context.Context, params ListParams) ([]Payment, int, error)
}
