// Package catalog provides the catalog bounded context module: notice
// types and drafting plans with their price points.
package catalog

import (
	"noticedesk_backend/internal/catalog/handler"
	"noticedesk_backend/internal/catalog/repository"
	"noticedesk_backend/internal/catalog/service"
	apphttp "noticedesk_backend/internal/http"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public read-only endpoints used by the funnel frontend
	ctx.V1.GET("/catalog/notice-types", m.handler.ListNoticeTypes)
	ctx.V1.GET("/catalog/plans", m.handler.ListPlans)

	// Admin CRUD endpoints
	adminGroup := ctx.Admin.Group("/catalog")
	adminGroup.GET("/notice-types", m.handler.ListAllNoticeTypes)
	adminGroup.POST("/notice-types", m.handler.CreateNoticeType)
	adminGroup.PUT("/notice-types/:id", m.handler.UpdateNoticeType)
	adminGroup.PUT("/plans/:code", m.handler.UpdatePlan)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
