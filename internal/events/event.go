// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"noticedesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Funnel Domain Events
// =============================================================================

// FunnelStarted is published when a visitor opens a new funnel session.
type FunnelStarted struct {
	BaseEvent
	SessionID  uuid.UUID `json:"sessionId"`
	NoticeType string    `json:"noticeType,omitempty"`
	Source     string    `json:"source,omitempty"`
}

func (e FunnelStarted) EventName() string { return "funnel.session.started" }

// StepCompleted is published when a visitor advances past a funnel step.
type StepCompleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Step      string    `json:"step"`
}

func (e StepCompleted) EventName() string { return "funnel.step.completed" }

// LeadCaptured is published when the contact step produces a stored lead.
type LeadCaptured struct {
	BaseEvent
	SessionID  uuid.UUID `json:"sessionId"`
	LeadID     uuid.UUID `json:"leadId"`
	NoticeType string    `json:"noticeType"`
	Phone      string    `json:"phone"`
	Duplicate  bool      `json:"duplicate"`
}

func (e LeadCaptured) EventName() string { return "funnel.lead.captured" }

// ExitIntentShown is published when the exit-intent dialog is displayed.
type ExitIntentShown struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Step      string    `json:"step"`
}

func (e ExitIntentShown) EventName() string { return "funnel.exit_intent.shown" }

// ExitOfferResolved is published when the visitor accepts, declines, or
// skips past the exit-intent offer.
type ExitOfferResolved struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Reason    string    `json:"reason,omitempty"`
	Offer     string    `json:"offer"`
	Outcome   string    `json:"outcome"` // "accepted", "declined", "skipped"
}

func (e ExitOfferResolved) EventName() string { return "funnel.exit_intent.resolved" }

// =============================================================================
// Payment Domain Events
// =============================================================================

// PaymentInitiated is published when a gateway order is created for a session.
type PaymentInitiated struct {
	BaseEvent
	SessionID   uuid.UUID `json:"sessionId"`
	OrderID     string    `json:"orderId"`
	AmountPaise int64     `json:"amountPaise"`
	Currency    string    `json:"currency"`
}

func (e PaymentInitiated) EventName() string { return "payments.payment.initiated" }

// PaymentCompleted is published when a payment is verified successfully.
type PaymentCompleted struct {
	BaseEvent
	SessionID   uuid.UUID `json:"sessionId"`
	LeadID      uuid.UUID `json:"leadId"`
	OrderID     string    `json:"orderId"`
	PaymentID   string    `json:"paymentId"`
	AmountPaise int64     `json:"amountPaise"`
}

func (e PaymentCompleted) EventName() string { return "payments.payment.completed" }

// PaymentFailed is published when a checkout attempt ends without a
// verified payment. ErrorType distinguishes user cancellation from
// gateway and verification failures.
type PaymentFailed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	OrderID   string    `json:"orderId,omitempty"`
	ErrorType string    `json:"errorType"` // "cancelled", "failed", "verification_failed", "order_creation_failed"
	Message   string    `json:"message,omitempty"`
}

func (e PaymentFailed) EventName() string { return "payments.payment.failed" }
