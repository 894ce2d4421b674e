// Package wallet provides the wallet ledger bounded context.
package wallet

import (
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/wallet/handler"
	"leadmarket_backend/internal/wallet/repository"
	"leadmarket_backend/internal/wallet/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the wallet bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the wallet module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "wallet"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts wallet routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/wallet/balance", m.handler.GetOwnBalance)
	ctx.Protected.GET("/wallet/sufficient", m.handler.CheckSufficientBalance)
	ctx.Protected.GET("/wallet/transactions", m.handler.ListOwnTransactions)

	adminGroup := ctx.Admin.Group("/wallets/:professionalId")
	adminGroup.GET("/balance", m.handler.GetBalance)
	adminGroup.GET("/transactions", m.handler.ListTransactions)
	adminGroup.POST("/debit", m.handler.Debit)
	adminGroup.POST("/credit", m.handler.Credit)
	adminGroup.POST("/refund", m.handler.Refund)
	adminGroup.POST("/adjust", m.handler.Adjust)
}
