package transport

// ListPaymentsRequest filters the admin payment listing.
type ListPaymentsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=created paid cancelled failed verification_failed"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
