package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AdminHandler serves back-office order and stock endpoints
type AdminHandler struct {
	BaseHandler
	checkoutService *apporder.CheckoutService
	stockRepo       stock.Repository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(checkoutService *apporder.CheckoutService, stockRepo stock.Repository) *AdminHandler {
	return &AdminHandler{
		checkoutService: checkoutService,
		stockRepo:       stockRepo,
	}
}

// cancelRequest carries the optional cancellation reason
type cancelRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// GetOrder returns one order
// GET /api/v1/admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.checkoutService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListOrders lists orders in one status for the back office
// GET /api/v1/admin/orders?status=PENDING_PAYMENT&page=1&page_size=20
func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := order.Status(c.Query("status"))
	if !status.IsValid() {
		h.BadRequest(c, "Unknown order status: "+c.Query("status"))
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if listReq.Page > 0 {
		filter.Page = listReq.Page
	}
	if listReq.PageSize > 0 {
		filter.PageSize = listReq.PageSize
	}

	page, err := h.checkoutService.ListByStatus(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CancelOrder cancels an order still awaiting payment
// POST /api/v1/admin/orders/:id/cancel
func (h *AdminHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "cancelled by " + middleware.GetAdminOperator(c)
	}

	if err := h.checkoutService.Cancel(c.Request.Context(), orderID, reason); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"cancelled": true})
}

// MarkShipped records carrier pickup for a processing order
// POST /api/v1/admin/orders/:id/ship
func (h *AdminHandler) MarkShipped(c *gin.Context) {
	h.transition(c, h.checkoutService.MarkShipped)
}

// MarkDelivered completes a shipped order
// POST /api/v1/admin/orders/:id/deliver
func (h *AdminHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.checkoutService.MarkDelivered)
}

// Refund refunds a paid or processing order
// POST /api/v1/admin/orders/:id/refund
func (h *AdminHandler) Refund(c *gin.Context) {
	h.transition(c, h.checkoutService.Refund)
}

// StockSnapshot returns the ledger counters for one product
// GET /api/v1/admin/stock/:productId
func (h *AdminHandler) StockSnapshot(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	snapshot, err := h.stockRepo.Availability(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, snapshot)
}

func (h *AdminHandler) transition(c *gin.Context, apply func(ctx context.Context, orderID uuid.UUID) error) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := apply(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"updated": true})
}
