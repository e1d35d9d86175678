// Package transport defines request and response DTOs for funnel HTTP endpoints.
package transport

import (
	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/internal/funnel/ports"
)

// StartSessionRequest opens a new funnel session.
type StartSessionRequest struct {
	PlanCode string `json:"planCode" validate:"omitempty,max=64"`
	Source   string `json:"source" validate:"omitempty,max=128"`
}

// ContactRequest is the step-1 submission.
type ContactRequest struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=120"`
	Phone       string `json:"phone" validate:"required,max=20"`
	CountryCode string `json:"countryCode" validate:"omitempty,len=2"`
}

// DetailsRequest is the step-2 submission.
type DetailsRequest struct {
	NoticeType  string `json:"noticeType" validate:"required,max=64"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	City        string `json:"city" validate:"required,max=120"`
}

// CloseReasonRequest records why the visitor tried to leave.
type CloseReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=64"`
}

// CheckoutFailRequest carries the gateway's failure description.
type CheckoutFailRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// VerifyRequest carries the checkout success callback fields.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required,max=64"`
	PaymentID string `json:"razorpay_payment_id" validate:"required,max=64"`
	Signature string `json:"razorpay_signature" validate:"required,max=128"`
}

// SessionResponse is the session view returned by every funnel endpoint.
// The aggregate already carries JSON tags, so it is embedded as-is.
type SessionResponse struct {
	Session domain.FormSession `json:"session"`
}

// CheckoutResponse bundles the session with the checkout configuration
// the frontend feeds into the gateway widget. Checkout is nil when the
// transition did not produce an order.
type CheckoutResponse struct {
	Session  domain.FormSession    `json:"session"`
	Checkout *ports.CheckoutConfig `json:"checkout,omitempty"`
}
