package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// Acknowledgment tokens expected by the payment provider. Anything other
// than the literal success token makes the provider retry the delivery.
const (
	ackSuccess = "OK"
	ackFailure = "FAIL"
)

// PaymentCallbackHandler receives the payment provider's webhook
type PaymentCallbackHandler struct {
	BaseHandler
	reconciliation *apppayment.ReconciliationService
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(reconciliation *apppayment.ReconciliationService) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{reconciliation: reconciliation}
}

// callbackRequest is the provider's notification payload
type callbackRequest struct {
	OrderRef    string `json:"order_ref" binding:"required"`
	TxnRef      string `json:"txn_ref"`
	Status      string `json:"status" binding:"required"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Signature   string `json:"signature" binding:"required"`
}

// Callback reconciles one provider notification and answers with the plain
// text token the provider protocol expects
// POST /api/v1/payment/callback
func (h *PaymentCallbackHandler) Callback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, ackFailure)
		return
	}

	_, err := h.reconciliation.HandleNotification(c.Request.Context(), payment.IncomingNotification{
		OrderRef:    req.OrderRef,
		TxnRef:      req.TxnRef,
		Status:      req.Status,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Signature:   req.Signature,
		ReceivedAt:  time.Now(),
	})
	if err != nil {
		logger.FromGin(c).Warn("payment callback not acknowledged",
			zap.String("order_ref", req.OrderRef),
			zap.Error(err),
		)
		c.String(statusForCallbackError(err), ackFailure)
		return
	}

	c.String(http.StatusOK, ackSuccess)
}

// statusForCallbackError picks the status for a failed acknowledgment. The
// provider only looks at the body token, but correct statuses keep access
// logs and provider dashboards honest.
func statusForCallbackError(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
