package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticedesk_backend/internal/payments/repository"
	"noticedesk_backend/internal/payments/service"
	"noticedesk_backend/internal/payments/transport"
	"noticedesk_backend/platform/httpkit"
	"noticedesk_backend/platform/validator"
)

// Handler handles admin HTTP requests for payments. Checkout itself goes
// through the funnel module.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new payments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListPayments lists payment records for the admin dashboard.
// GET /api/v1/admin/payments
func (h *Handler) ListPayments(c *gin.Context) {
	var req transport.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	payments, total, err := h.svc.List(c.Request.Context(), repository.ListParams{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": payments, "total": total})
}

// GetPayment retrieves a payment by gateway order id.
// GET /api/v1/admin/payments/:orderId
func (h *Handler) GetPayment(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	payment, err := h.svc.GetByOrderID(c.Request.Context(), orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, payment)
}
