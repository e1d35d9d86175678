package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"noticedesk_backend/internal/catalog/repository"
	"noticedesk_backend/internal/catalog/service"
	"noticedesk_backend/internal/catalog/transport"
	"noticedesk_backend/platform/httpkit"
	"noticedesk_backend/platform/validator"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid catalog id"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListNoticeTypes returns active notice types for the funnel dropdown.
// GET /api/v1/catalog/notice-types
func (h *Handler) ListNoticeTypes(c *gin.Context) {
	result, err := h.svc.ListNoticeTypes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// ListPlans returns active plans with their price points.
// GET /api/v1/catalog/plans
func (h *Handler) ListPlans(c *gin.Context) {
	result, err := h.svc.ListPlans(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// ListAllNoticeTypes returns every notice type for admin management.
// GET /api/v1/admin/catalog/notice-types
func (h *Handler) ListAllNoticeTypes(c *gin.Context) {
	result, err := h.svc.ListAllNoticeTypes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// CreateNoticeType adds a notice type.
// POST /api/v1/admin/catalog/notice-types
func (h *Handler) CreateNoticeType(c *gin.Context) {
	var req transport.CreateNoticeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateNoticeType(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateNoticeType updates a notice type.
// PUT /api/v1/admin/catalog/notice-types/:id
func (h *Handler) UpdateNoticeType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateNoticeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateNoticeType(c.Request.Context(), repository.UpdateNoticeTypeParams{
		ID:          id,
		Label:       req.Label,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Active:      req.Active,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdatePlan updates plan pricing.
// PUT /api/v1/admin/catalog/plans/:code
func (h *Handler) UpdatePlan(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdatePlan(c.Request.Context(), code, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
