// Package professionals provides the professionals directory bounded context.
package professionals

import (
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/professionals/handler"
	"leadmarket_backend/internal/professionals/repository"
	"leadmarket_backend/internal/professionals/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the professionals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the professionals module.
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
	return "professionals"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts professionals routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/professionals")
	adminGroup.GET("", m.handler.ListProfessionals)
	adminGroup.GET("/:id", m.handler.GetProfessional)
	adminGroup.POST("", m.handler.CreateProfessional)
	adminGroup.PATCH("/:id", m.handler.UpdateProfessional)
}
