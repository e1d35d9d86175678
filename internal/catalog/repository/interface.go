package repository

import (
	"context"

	"github.com/google/uuid"
)

// NoticeType is a legal notice category offered in the funnel dropdown.
type NoticeType struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// Plan is a purchasable drafting plan with its price points.
// Amounts are stored in paise; the gateway and all arithmetic use
// minor units only.
type Plan struct {
	ID                  uuid.UUID `json:"id"`
	Code                string    `json:"code"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	AmountPaise         int64     `json:"amountPaise"`
	DiscountAmountPaise int64     `json:"discountAmountPaise"`
	Currency            string    `json:"currency"`
	Active              bool      `json:"active"`
	CreatedAt           string    `json:"createdAt"`
	UpdatedAt           string    `json:"updatedAt"`
}

// CreateNoticeTypeParams holds fields for inserting a notice type.
type CreateNoticeTypeParams struct {
	Slug        string
	Label       string
	Description string
	SortOrder   int
}

// UpdateNoticeTypeParams holds optional fields for updating a notice type.
type UpdateNoticeTypeParams struct {
	ID          uuid.UUID
	Label       *string
	Description *string
	SortOrder   *int
	Active      *bool
}

// UpdatePlanParams holds optional fields for updating a plan.
type UpdatePlanParams struct {
	Code                string
	Name                *string
	Description         *string
	AmountPaise         *int64
	DiscountAmountPaise *int64
	Active              *bool
}

// Repository defines catalog persistence operations.
type Repository interface {
	ListNoticeTypes(ctx context.Context, includeInactive bool) ([]NoticeType, error)
	GetNoticeTypeBySlug(ctx context.Context, slug string) (NoticeType, error)
	CreateNoticeType(ctx context.Context, params CreateNoticeTypeParams) (NoticeType, error)
	UpdateNoticeType(ctx context.Context, params UpdateNoticeTypeParams) (NoticeType, error)

	ListPlans(ctx context.Context, includeInactive bool) ([]Plan, error)
	GetPlanByCode(ctx context.Context, code string) (Plan, error)
	UpdatePlan(ctx context.Context, params UpdatePlanParams) (Plan, error)
}
