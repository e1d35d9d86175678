// Package domain holds the funnel session aggregate and its pure state
// machine. Nothing in this package performs I/O; every transition is a
// function from a session value and an event to a new session value.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Step is the visitor's position in the three-step wizard.
type Step int

const (
	StepContact Step = 1
	StepDetails Step = 2
	StepPayment Step = 3
)

// String returns the step's wire name.
func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepDetails:
		return "details"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// PaymentState is the checkout lifecycle within the payment step.
type PaymentState string

const (
	PaymentNotStarted          PaymentState = "not_started"
	PaymentCheckoutUnavailable PaymentState = "checkout_unavailable"
	PaymentOrderCreating       PaymentState = "order_creating"
	PaymentAwaitingUserAction  PaymentState = "awaiting_user_action"
	PaymentVerifying           PaymentState = "verifying"
	PaymentSucceeded           PaymentState = "succeeded"
	PaymentCancelled           PaymentState = "cancelled"
	PaymentFailed              PaymentState = "failed"
)

// InFlight reports whether an order is actively being processed. While
// in flight, new orders and backward navigation are both refused.
func (p PaymentState) InFlight() bool {
	switch p {
	case PaymentOrderCreating, PaymentAwaitingUserAction, PaymentVerifying:
		return true
	}
	return false
}

// CanStartCheckout reports whether a new order may be created from this
// state. Cancelled and Failed are resumable; Succeeded is terminal.
func (p PaymentState) CanStartCheckout() bool {
	switch p {
	case PaymentNotStarted, PaymentCheckoutUnavailable, PaymentCancelled, PaymentFailed:
		return true
	}
	return false
}

// ContactInfo is the step-1 payload, already validated and with the
// phone normalized to E.164.
type ContactInfo struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode,omitempty"`
}

// CaseDetails is the step-2 payload.
type CaseDetails struct {
	NoticeType  string `json:"noticeType"`
	Description string `json:"description,omitempty"`
	City        string `json:"city"`
}

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
	NoticeSupport NoticeLevel = "support"
)

// Notice is the message the frontend should surface after the last
// transition. It is replaced on every transition that produces one.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// FormSession is the aggregate root of one visitor's funnel attempt.
// Values are copied on every transition; the session store is the only
// place that holds the current value.
type FormSession struct {
	ID            uuid.UUID    `json:"id"`
	PlanCode      string       `json:"planCode"`
	PlanName      string       `json:"planName"`
	Source        string       `json:"source,omitempty"`
	CurrentStep   Step         `json:"currentStep"`
	Contact       ContactInfo  `json:"contact"`
	Details       CaseDetails  `json:"details"`
	LeadID        *uuid.UUID   `json:"leadId,omitempty"`
	DuplicateLead bool         `json:"duplicateLead"`
	Pricing       Pricing      `json:"pricing"`
	Offers        Offers       `json:"offers"`
	PaymentState  PaymentState `json:"paymentState"`
	OrderID       string       `json:"orderId,omitempty"`
	PaymentID     string       `json:"paymentId,omitempty"`
	ExitIntent    ExitIntent   `json:"exitIntent"`
	Notice        *Notice      `json:"notice,omitempty"`
	RedirectURL   string       `json:"redirectUrl,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewSession creates a fresh session at the contact step.
func NewSession(id uuid.UUID, planCode, planName, source string, pricing Pricing, offers Offers, now time.Time) FormSession {
	return FormSession{
		ID:           id,
		PlanCode:     planCode,
		PlanName:     planName,
		Source:       source,
		CurrentStep:  StepContact,
		Pricing:      pricing,
		Offers:       offers,
		PaymentState: PaymentNotStarted,
		ExitIntent:   ExitIntent{Stage: ExitHidden},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
