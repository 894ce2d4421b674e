// Package handler exposes wallet HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadmarket_backend/internal/wallet/service"
	"leadmarket_backend/internal/wallet/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid professional id"
	msgUnauthorized     = "unauthorized"
)

// Handler handles HTTP requests for the wallet ledger.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new wallet handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetOwnBalance returns the caller's wallet balance.
// GET /api/v1/wallet/balance
func (h *Handler) GetOwnBalance(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	result, err := h.svc.Balance(c.Request.Context(), callerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListOwnTransactions returns the caller's ledger history.
// GET /api/v1/wallet/transactions
func (h *Handler) ListOwnTransactions(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	var req transport.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.History(c.Request.Context(), callerID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CheckSufficientBalance reports whether the caller's wallet covers an
// amount, so a professional can check affordability before responding to an
// offer.
// GET /api/v1/wallet/sufficient
func (h *Handler) CheckSufficientBalance(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	var req transport.SufficientBalanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	sufficient, err := h.svc.HasSufficientBalance(c.Request.Context(), callerID, req.AmountCents)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SufficientBalanceResponse{
		ProfessionalID: callerID,
		AmountCents:    req.AmountCents,
		Sufficient:     sufficient,
	})
}

// GetBalance returns a professional's wallet balance.
// GET /api/v1/admin/wallets/:professionalId/balance
func (h *Handler) GetBalance(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Balance(c.Request.Context(), professionalID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListTransactions returns a professional's ledger history.
// GET /api/v1/admin/wallets/:professionalId/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.History(c.Request.Context(), professionalID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Debit charges a professional's wallet.
// POST /api/v1/admin/wallets/:professionalId/debit
func (h *Handler) Debit(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Debit(c.Request.Context(), professionalID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Credit adds funds to a professional's wallet.
// POST /api/v1/admin/wallets/:professionalId/credit
func (h *Handler) Credit(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Credit(c.Request.Context(), professionalID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Refund returns a previous charge to a professional's wallet.
// POST /api/v1/admin/wallets/:professionalId/refund
func (h *Handler) Refund(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Refund(c.Request.Context(), professionalID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Adjust applies a signed correction to a professional's wallet.
// POST /api/v1/admin/wallets/:professionalId/adjust
func (h *Handler) Adjust(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Adjust(c.Request.Context(), professionalID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}
