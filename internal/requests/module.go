// Package requests provides the customer request bounded context.
package requests

import (
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/requests/handler"
	"leadmarket_backend/internal/requests/repository"
	"leadmarket_backend/internal/requests/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the requests bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the requests module. The offer dispatch
// and cancellation ports are wired afterwards by the composition root.
func NewModule(pool *pgxpool.Pool, policies service.PolicyResolver, sweepCfg service.SweepConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, policies, sweepCfg, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "requests"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts request routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/requests")
	group.POST("", m.handler.Submit)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/broadcast", m.handler.Broadcast)
	group.POST("/:id/cancel", m.handler.Cancel)

	adminGroup := ctx.Admin.Group("/requests")
	adminGroup.GET("", m.handler.AdminList)
	adminGroup.GET("/:id", m.handler.AdminGet)
	adminGroup.POST("/:id/broadcast", m.handler.AdminBroadcast)
	adminGroup.POST("/:id/complete", m.handler.AdminComplete)
}
