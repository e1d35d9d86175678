// Package ports defines the funnel's outbound dependencies. Adapters in
// internal/adapters bind these to the leads, payments, catalog, and
// followup modules at composition time.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// SubmitLeadParams carries the accumulated contact and case data the
// funnel submits when the details step completes.
type SubmitLeadParams struct {
	SessionID   uuid.UUID
	Name        string
	Phone       string
	NoticeType  string
	City        string
	Description string
	Source      string
}

// LeadResult reports the lead a submission resolved to. Duplicate means
// an existing unpaid lead absorbed the submission; the id is always set
// either way.
type LeadResult struct {
	LeadID    uuid.UUID
	Duplicate bool
}

// LeadWriter creates and updates leads on behalf of the funnel.
type LeadWriter interface {
	Submit(ctx context.Context, params SubmitLeadParams) (LeadResult, error)
	MarkPaid(ctx context.Context, leadID uuid.UUID, orderID string) error
}

// CreateOrderParams describes the gateway order for the current price.
// AmountPaise is the current price in minor units.
type CreateOrderParams struct {
	SessionID   uuid.UUID
	LeadID      uuid.UUID
	AmountPaise int64
	Prefill     map[string]string
	Notes       map[string]string
}

// CheckoutConfig is the frontend checkout configuration returned from
// order creation.
type CheckoutConfig struct {
	Key         string            `json:"key"`
	AmountPaise int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	OrderID     string            `json:"order_id"`
	Prefill     map[string]string `json:"prefill,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
	ThemeColor  string            `json:"theme_color,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
}

// VerifyParams carries the checkout success callback fields.
type VerifyParams struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentPort is the funnel's view of the payments module.
type PaymentPort interface {
	// Ready reports whether checkout can start; callers fail closed.
	Ready() bool
	CreateOrder(ctx context.Context, params CreateOrderParams) (CheckoutConfig, error)
	// Verify returns whether the payment is authentic. A false result is
	// a domain outcome, not an error.
	Verify(ctx context.Context, params VerifyParams) (bool, error)
	RecordCancelled(ctx context.Context, orderID string) error
	RecordFailed(ctx context.Context, orderID, note string) error
}

// PlanPricing is the catalog's price data for one plan, in whole rupees.
type PlanPricing struct {
	Code              string
	Name              string
	BasePrice         int64
	DiscountPrice     int64
	ConsultationPrice int64
}

// CatalogReader resolves pricing and notice-type options at session
// start and validation time.
type CatalogReader interface {
	PlanPricing(ctx context.Context, planCode string) (PlanPricing, error)
	NoticeTypeExists(ctx context.Context, slug string) (bool, error)
}

// NudgeParams describes a follow-up message for an abandoned checkout.
type NudgeParams struct {
	SessionID uuid.UUID
	LeadID    uuid.UUID
	Name      string
	Phone     string
	OrderID   string
}

// FollowUpScheduler queues recovery nudges. Implementations must be
// best-effort; scheduling failures never block the funnel.
type FollowUpScheduler interface {
	ScheduleNudge(ctx context.Context, params NudgeParams) error
}
