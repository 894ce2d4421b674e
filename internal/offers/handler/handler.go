// Package handler exposes offers HTTP endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadmarket_backend/internal/offers/repository"
	"leadmarket_backend/internal/offers/service"
	"leadmarket_backend/internal/offers/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid offer id"
	msgInvalidReqID     = "invalid request id"
	msgUnauthorized     = "unauthorized"

	singleOfferWindow = 15 * time.Minute
)

// Handler handles HTTP requests for offers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new offers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the calling professional's offers.
// GET /api/v1/offers
func (h *Handler) List(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	var req transport.ListOffersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListByProfessional(c.Request.Context(), callerID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one of the calling professional's offers.
// GET /api/v1/offers/:id
func (h *Handler) Get(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id, callerID, false)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Accept resolves a first-click offer for the calling professional.
// POST /api/v1/offers/:id/accept
func (h *Handler) Accept(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Accept(c.Request.Context(), id, callerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, acceptResponse(result))
}

// ProposePrice counters an offer with a price.
// POST /api/v1/offers/:id/propose-price
func (h *Handler) ProposePrice(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ProposePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ProposePrice(c.Request.Context(), id, callerID, req.PriceCents)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Approve resolves a countered offer in favor of its professional, on
// behalf of the calling client.
// POST /api/v1/offers/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.ClientApprove(c.Request.Context(), id, callerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, acceptResponse(result))
}

// Miss marks an offer as passed by the calling professional.
// POST /api/v1/offers/:id/miss
func (h *Handler) Miss(c *gin.Context) {
	callerID, ok := httpkit.CallerID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Miss(c.Request.Context(), id, callerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AdminListByRequest returns all offers of a request.
// GET /api/v1/admin/requests/:id/offers
func (h *Handler) AdminListByRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidReqID, nil)
		return
	}

	result, err := h.svc.ListByRequest(c.Request.Context(), requestID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AdminCreateSingleOffer creates one targeted offer for a request.
// POST /api/v1/admin/requests/:id/offers
func (h *Handler) AdminCreateSingleOffer(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidReqID, nil)
		return
	}

	var req transport.CreateSingleOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateSingleOffer(c.Request.Context(), repository.CreateSingleOfferParams{
		RequestID:      requestID,
		ProfessionalID: req.ProfessionalID,
		PriceCents:     req.PriceCents,
		ExpiresAt:      time.Now().Add(singleOfferWindow),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// AdminCancel withdraws an open offer.
// POST /api/v1/admin/offers/:id/cancel
func (h *Handler) AdminCancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func acceptResponse(result repository.AcceptResult) transport.AcceptResponse {
	return transport.AcceptResponse{
		Offer:             result.Offer,
		JobID:             result.JobID,
		ChargedCents:      result.ChargedCents,
		BalanceAfterCents: result.Debit.BalanceAfterCents,
	}
}
