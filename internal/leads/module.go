// Package leads provides the leads bounded context module: contact
// capture with duplicate absorption, case details, and admin listing.
package leads

import (
	"noticedesk_backend/internal/http"
	"noticedesk_backend/internal/leads/handler"
	"noticedesk_backend/internal/leads/repository"
	"noticedesk_backend/internal/leads/service"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.FunnelConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log, cfg.GetPhoneRegion())
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
// All lead routes are admin-only; visitors create leads through the
// funnel module.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	adminGroup := ctx.Admin.Group("/leads")
	adminGroup.GET("", m.handler.ListLeads)
	adminGroup.GET("/:id", m.handler.GetLead)
	adminGroup.PUT("/:id/status", m.handler.UpdateLeadStatus)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)
