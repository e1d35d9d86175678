package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"noticedesk_backend/internal/funnel/domain"
	"noticedesk_backend/internal/funnel/service"
	"noticedesk_backend/internal/funnel/transport"
	"noticedesk_backend/platform/httpkit"
	"noticedesk_backend/platform/validator"
)

// Handler handles HTTP requests for the funnel.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSessionID = "invalid session id"
)

// New creates a new funnel handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// StartSession opens a new funnel session.
// POST /api/v1/funnel/sessions
func (h *Handler) StartSession(c *gin.Context) {
	var req transport.StartSessionRequest
	// Body is optional: an empty POST starts the default plan.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	sess, err := h.svc.Start(c.Request.Context(), service.StartParams{
		PlanCode: req.PlanCode,
		Source:   req.Source,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.SessionResponse{Session: sess})
}

// GetSession returns the current session state.
// GET /api/v1/funnel/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// SubmitContact completes the contact step.
// POST /api/v1/funnel/sessions/:id/contact
func (h *Handler) SubmitContact(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	sess, err := h.svc.SubmitContact(c.Request.Context(), id, service.ContactParams{
		FullName:    req.FullName,
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// SubmitDetails completes the details step and submits the lead.
// POST /api/v1/funnel/sessions/:id/details
func (h *Handler) SubmitDetails(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	sess, err := h.svc.SubmitDetails(c.Request.Context(), id, service.DetailsParams{
		NoticeType:  req.NoticeType,
		Description: req.Description,
		City:        req.City,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// EditContact returns the visitor to the contact step.
// POST /api/v1/funnel/sessions/:id/contact/edit
func (h *Handler) EditContact(c *gin.Context) {
	h.transition(c, h.svc.EditContact)
}

// Back returns the visitor from payment to details.
// POST /api/v1/funnel/sessions/:id/back
func (h *Handler) Back(c *gin.Context) {
	h.transition(c, h.svc.Back)
}

// Close handles a dismissal attempt; the first one on the payment step
// opens the exit-intent dialog.
// POST /api/v1/funnel/sessions/:id/close
func (h *Handler) Close(c *gin.Context) {
	h.transition(c, h.svc.Close)
}

// SelectCloseReason records the visitor's reason for leaving.
// POST /api/v1/funnel/sessions/:id/exit/reason
func (h *Handler) SelectCloseReason(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.CloseReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	sess, err := h.svc.SelectCloseReason(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// AcceptOffer accepts the exit-intent offer.
// POST /api/v1/funnel/sessions/:id/exit/accept
func (h *Handler) AcceptOffer(c *gin.Context) {
	h.transition(c, h.svc.AcceptOffer)
}

// DeclineOffer declines the offer and honors the dismissal.
// POST /api/v1/funnel/sessions/:id/exit/decline
func (h *Handler) DeclineOffer(c *gin.Context) {
	h.transition(c, h.svc.DeclineOffer)
}

// SkipOffer returns from the consultation offer to full-price payment.
// POST /api/v1/funnel/sessions/:id/exit/skip
func (h *Handler) SkipOffer(c *gin.Context) {
	h.transition(c, h.svc.SkipOffer)
}

// BeginCheckout creates a gateway order for the current price.
// POST /api/v1/funnel/sessions/:id/checkout
func (h *Handler) BeginCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.svc.BeginCheckout(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CheckoutResponse{Session: result.Session}
	if result.Checkout.OrderID != "" {
		checkout := result.Checkout
		resp.Checkout = &checkout
	}
	httpkit.OK(c, resp)
}

// CancelCheckout records the visitor dismissing the checkout UI.
// POST /api/v1/funnel/sessions/:id/checkout/cancel
func (h *Handler) CancelCheckout(c *gin.Context) {
	h.transition(c, h.svc.CancelCheckout)
}

// FailCheckout records a gateway-reported payment failure.
// POST /api/v1/funnel/sessions/:id/checkout/fail
func (h *Handler) FailCheckout(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.CheckoutFailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	sess, err := h.svc.FailCheckout(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// VerifyPayment confirms the checkout success callback server-side.
// POST /api/v1/funnel/sessions/:id/checkout/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req transport.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	sess, err := h.svc.VerifyPayment(c.Request.Context(), id, service.VerifyCheckoutParams{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}

// transition runs a body-less session transition and writes the
// resulting session view.
func (h *Handler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (domain.FormSession, error)) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := fn(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Session: sess})
}
