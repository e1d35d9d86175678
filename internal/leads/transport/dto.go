package transport

// ListLeadsRequest filters the admin lead listing.
type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new details_added paid contacted closed"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// UpdateLeadStatusRequest sets a lead's status.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new details_added paid contacted closed"`
}
