// Package catalog provides the catalog bounded context module.
package catalog

import (
	"leadmarket_backend/internal/catalog/domain"
	"leadmarket_backend/internal/catalog/handler"
	"leadmarket_backend/internal/catalog/repository"
	"leadmarket_backend/internal/catalog/service"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, windows domain.WindowConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, windows, log)
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

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/catalog/categories", m.handler.ListCategories)
	ctx.Protected.GET("/catalog/categories/:id", m.handler.GetCategory)

	adminGroup := ctx.Admin.Group("/catalog")
	adminGroup.POST("/categories", m.handler.CreateCategory)
	adminGroup.PATCH("/categories/:id", m.handler.UpdateCategory)
}
