package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apporder "github.com/storefront/backend/internal/application/order"
)

// validate checks request DTOs against their validate tags
var validate = validator.New()

// CheckoutHandler serves the storefront-facing order endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *apporder.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *apporder.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout creates an order from a cart, reserving stock for every line
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req apporder.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.BadRequest(c, "Request validation failed: "+err.Error())
		return
	}

	resp, err := h.checkoutService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// Track looks an order up for a guest by reference and email
// GET /api/v1/orders/track?reference=...&email=...
func (h *CheckoutHandler) Track(c *gin.Context) {
	var req apporder.TrackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.BadRequest(c, "Request validation failed: "+err.Error())
		return
	}

	resp, err := h.checkoutService.Track(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
