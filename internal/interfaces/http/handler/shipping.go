package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appshipping "github.com/storefront/backend/internal/application/shipping"
)

// ShippingHandler serves the back-office quote broker endpoints
type ShippingHandler struct {
	BaseHandler
	broker *appshipping.QuoteBroker
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(broker *appshipping.QuoteBroker) *ShippingHandler {
	return &ShippingHandler{broker: broker}
}

// RequestQuotes fetches carrier offers for a paid order
// POST /api/v1/admin/orders/:id/shipping/quotes
func (h *ShippingHandler) RequestQuotes(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.broker.RequestQuotes(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetQuotes returns the latest quote for an order
// GET /api/v1/admin/orders/:id/shipping/quotes
func (h *ShippingHandler) GetQuotes(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.broker.GetLatestForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Confirm books one quoted candidate and moves the order to PROCESSING
// POST /api/v1/admin/shipments/:id/confirm
func (h *ShippingHandler) Confirm(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	var req appshipping.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.BadRequest(c, "Request validation failed: "+err.Error())
		return
	}

	resp, err := h.broker.Confirm(c.Request.Context(), quoteID, req.CandidateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
