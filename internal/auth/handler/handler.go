package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticedesk_backend/internal/auth/service"
	"noticedesk_backend/internal/auth/transport"
	"noticedesk_backend/platform/httpkit"
	"noticedesk_backend/platform/validator"
)

// Handler handles HTTP requests for auth.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new auth handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Login authenticates the operator and returns an access token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Me returns the authenticated operator identity.
// GET /api/v1/admin/me
func (h *Handler) Me(c *gin.Context) {
	subject := c.GetString(httpkit.ContextSubjectKey)
	httpkit.OK(c, gin.H{"email": subject})
}
