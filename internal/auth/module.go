// Package auth provides the admin authentication module.
package auth

import (
	"noticedesk_backend/internal/auth/handler"
	"noticedesk_backend/internal/auth/service"
	apphttp "noticedesk_backend/internal/http"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"
)

// Module is the auth module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(cfg config.AdminAuthConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/auth/login", m.handler.Login)
	ctx.Admin.GET("/me", m.handler.Me)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
