package transport

// Notice Types

type CreateNoticeTypeRequest struct {
	Slug        string  `json:"slug" validate:"required,min=1,max=60"`
	Label       string  `json:"label" validate:"required,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	SortOrder   int     `json:"sortOrder" validate:"min=0"`
}

type UpdateNoticeTypeRequest struct {
	Label       *string `json:"label,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	SortOrder   *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Active      *bool   `json:"active,omitempty"`
}

// Plans

type UpdatePlanRequest struct {
	Name                *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description         *string `json:"description,omitempty" validate:"omitempty,max=500"`
	AmountPaise         *int64  `json:"amountPaise,omitempty" validate:"omitempty,min=100"`
	DiscountAmountPaise *int64  `json:"discountAmountPaise,omitempty" validate:"omitempty,min=0"`
	Active              *bool   `json:"active,omitempty"`
}
