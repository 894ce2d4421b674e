// Package jobs provides the job lifecycle bounded context.
package jobs

import (
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/jobs/handler"
	"leadmarket_backend/internal/jobs/repository"
	"leadmarket_backend/internal/jobs/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the jobs bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the jobs module.
func NewModule(pool *pgxpool.Pool, completer service.RequestCompleter, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, completer, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "jobs"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts job routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/jobs", m.handler.List)
	ctx.Protected.GET("/jobs/:id", m.handler.Get)
	ctx.Protected.POST("/jobs/:id/complete", m.handler.Complete)

	adminGroup := ctx.Admin.Group("/jobs/:id")
	adminGroup.POST("/complete", m.handler.AdminComplete)
	adminGroup.POST("/cancel", m.handler.AdminCancel)
	adminGroup.POST("/no-show", m.handler.AdminMarkNoShow)
}
