// Package funnel provides the conversion funnel bounded context: the
// multi-step wizard sessions, the exit-intent interceptor, and the
// checkout orchestration against the payment gateway.
package funnel

import (
	"context"

	"noticedesk_backend/internal/events"
	"noticedesk_backend/internal/funnel/handler"
	"noticedesk_backend/internal/funnel/ports"
	"noticedesk_backend/internal/funnel/service"
	"noticedesk_backend/internal/funnel/session"
	apphttp "noticedesk_backend/internal/http"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"
)

// Module is the funnel bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	store   *session.Store
}

// Deps are the outbound ports the funnel needs, bound by the
// composition root. FollowUp may be nil when no scheduler is configured.
type Deps struct {
	Leads    ports.LeadWriter
	Payments ports.PaymentPort
	Catalog  ports.CatalogReader
	FollowUp ports.FollowUpScheduler
}

// NewModule creates and initializes the funnel module.
func NewModule(deps Deps, bus events.Bus, cfg config.FunnelConfig, val *validator.Validator, log *logger.Logger) *Module {
	store := session.NewStore(cfg.GetSessionTTL(), log)
	svc := service.New(store, deps.Leads, deps.Payments, deps.Catalog, deps.FollowUp, bus, cfg, log)
	store.OnExpire(svc.HandleExpired)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		store:   store,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "funnel"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// StartSweeper launches session expiry sweeps until ctx is cancelled.
func (m *Module) StartSweeper(ctx context.Context) {
	m.store.StartSweeper(ctx)
}

// RegisterRoutes mounts funnel routes on the provided router context.
// Every endpoint is public and sits behind the funnel rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.V1.Group("/funnel")
	if ctx.FunnelRateLimiter != nil {
		g.Use(ctx.FunnelRateLimiter.RateLimit())
	}

	g.POST("/sessions", m.handler.StartSession)
	g.GET("/sessions/:id", m.handler.GetSession)

	g.POST("/sessions/:id/contact", m.handler.SubmitContact)
	g.POST("/sessions/:id/contact/edit", m.handler.EditContact)
	g.POST("/sessions/:id/details", m.handler.SubmitDetails)
	g.POST("/sessions/:id/back", m.handler.Back)
	g.POST("/sessions/:id/close", m.handler.Close)

	g.POST("/sessions/:id/exit/reason", m.handler.SelectCloseReason)
	g.POST("/sessions/:id/exit/accept", m.handler.AcceptOffer)
	g.POST("/sessions/:id/exit/decline", m.handler.DeclineOffer)
	g.POST("/sessions/:id/exit/skip", m.handler.SkipOffer)

	g.POST("/sessions/:id/checkout", m.handler.BeginCheckout)
	g.POST("/sessions/:id/checkout/cancel", m.handler.CancelCheckout)
	g.POST("/sessions/:id/checkout/fail", m.handler.FailCheckout)
	g.POST("/sessions/:id/checkout/verify", m.handler.VerifyPayment)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
