// Package offers provides the lead offer bounded context.
package offers

import (
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/offers/handler"
	"leadmarket_backend/internal/offers/repository"
	"leadmarket_backend/internal/offers/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the offers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the offers module. The three Tx ports
// are adapters over the wallet, jobs and requests repositories so the
// acceptance path can span them in one transaction.
func NewModule(
	pool *pgxpool.Pool,
	wallet repository.WalletTxOps,
	jobs repository.JobTxOps,
	requests repository.RequestTxOps,
	finder service.EligibleProfessionalFinder,
	walletCfg service.WalletConfig,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool, wallet, jobs, requests)
	svc := service.New(repo, finder, walletCfg, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "offers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-context adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts offer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/offers", m.handler.List)
	ctx.Protected.GET("/offers/:id", m.handler.Get)
	ctx.Protected.POST("/offers/:id/accept", m.handler.Accept)
	ctx.Protected.POST("/offers/:id/propose-price", m.handler.ProposePrice)
	ctx.Protected.POST("/offers/:id/approve", m.handler.Approve)
	ctx.Protected.POST("/offers/:id/miss", m.handler.Miss)

	ctx.Admin.GET("/requests/:id/offers", m.handler.AdminListByRequest)
	ctx.Admin.POST("/requests/:id/offers", m.handler.AdminCreateSingleOffer)
	ctx.Admin.POST("/offers/:id/cancel", m.handler.AdminCancel)
}
