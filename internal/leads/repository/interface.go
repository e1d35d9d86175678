package repository

import (
	"context"

	"github.com/google/uuid"
)

// Lead statuses follow the funnel lifecycle. A lead is created as soon as
// the contact step completes so a drop-off later in the funnel still
// leaves a callable phone number behind.
const (
	StatusNew          = "new"
	StatusDetailsAdded = "details_added"
	StatusPaid         = "paid"
	StatusContacted    = "contacted"
	StatusClosed       = "closed"
)

// Lead is a captured prospect for the notice drafting service.
type Lead struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	NoticeType        string     `json:"noticeType"`
	City              string     `json:"city,omitempty"`
	OppositePartyName string     `json:"oppositePartyName,omitempty"`
	AmountInvolved    *int64     `json:"amountInvolved,omitempty"`
	CaseDescription   string     `json:"caseDescription,omitempty"`
	Status            string     `json:"status"`
	Source            string     `json:"source,omitempty"`
	SessionID         *uuid.UUID `json:"sessionId,omitempty"`
	PaidOrderID       string     `json:"paidOrderId,omitempty"`
	PaidAt            *string    `json:"paidAt,omitempty"`
	CreatedAt         string     `json:"createdAt"`
	UpdatedAt         string     `json:"updatedAt"`
}

// CreateParams holds the contact-step fields that create a lead.
// Phone must already be normalized to E.164.
type CreateParams struct {
	Name       string
	Phone      string
	NoticeType string
	Source     string
	SessionID  *uuid.UUID
}

// CaseDetailsParams holds the case-details-step fields.
type CaseDetailsParams struct {
	ID                uuid.UUID
	City              string
	OppositePartyName string
	AmountInvolved    *int64
	CaseDescription   string
}

// ListParams filters the admin lead listing.
type ListParams struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// Repository defines lead persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	// FindOpenByPhoneAndNoticeType returns the most recent unpaid lead
	// matching the phone and notice type, or apperr.NotFound.
	FindOpenByPhoneAndNoticeType(ctx context.Context, phone, noticeType string) (Lead, error)
	UpdateContact(ctx context.Context, id uuid.UUID, name, phone string) (Lead, error)
	UpdateCaseDetails(ctx context.Context, params CaseDetailsParams) (Lead, error)
	MarkPaid(ctx context.Context, id uuid.UUID, orderID string) (Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}
