// Package payments provides the payments bounded context module: gateway
// order creation, signature verification, and payment records.
package payments

import (
	"noticedesk_backend/internal/http"
	"noticedesk_backend/internal/payments/gateway"
	"noticedesk_backend/internal/payments/handler"
	"noticedesk_backend/internal/payments/repository"
	"noticedesk_backend/internal/payments/service"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	gateway gateway.Gateway
}

// NewModule creates and initializes the payments module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	gw := gateway.NewRazorpay(cfg, log)
	repo := repository.New(pool)
	svc := service.New(repo, gw, cfg, cfg, log)
	h := handler.New(svc, val)

	if !gw.Ready() {
		log.Warn("razorpay credentials not configured; checkout will fail closed")
	}

	return &Module{
		handler: h,
		service: svc,
		gateway: gw,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Gateway returns the payment gateway for external use.
func (m *Module) Gateway() gateway.Gateway {
	return m.gateway
}

// RegisterRoutes mounts payment routes on the provided router context.
// All payment routes are admin-only; checkout goes through the funnel.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	adminGroup := ctx.Admin.Group("/payments")
	adminGroup.GET("", m.handler.ListPayments)
	adminGroup.GET("/:orderId", m.handler.GetPayment)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)
