package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	infrapayment "github.com/storefront/backend/internal/infrastructure/payment"
)

const testSecret = "test-merchant-secret"

func newCallbackRouter(orderRepo order.Repository, notifRepo payment.Repository, stockRepo *stubStockRepo) *gin.Engine {
	if stockRepo == nil {
		stockRepo = &stubStockRepo{}
	}
	verifier := infrapayment.NewHMACVerifier(testSecret)
	scope := apppayment.NewNoOpTransactionScope(orderRepo, stockRepo, notifRepo)
	svc := apppayment.NewReconciliationService(verifier, scope, notifRepo, zap.NewNop())

	engine := gin.New()
	engine.POST("/api/v1/payment/callback", NewPaymentCallbackHandler(svc).Callback)
	return engine
}

// signedCallback builds the provider's JSON payload with a valid signature
func signedCallback(t *testing.T, orderRef, status string, amountMinor int64) []byte {
	t.Helper()
	sig := infrapayment.NewHMACVerifier(testSecret).Sign(payment.IncomingNotification{
		OrderRef:    orderRef,
		Status:      status,
		AmountMinor: amountMinor,
	})
	body, err := json.Marshal(gin.H{
		"order_ref": orderRef,
		"txn_ref":   "txn-1",
		"status":    status,
		"amount":    amountMinor,
		"currency":  "USD",
		"signature": sig,
	})
	require.NoError(t, err)
	return body
}

func postCallback(engine *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCallbackSuccessAcknowledgesOK(t *testing.T) {
	o := pendingOrder(t)
	orderRepo := &stubOrderRepo{
		findByRef: func(_ context.Context, ref string) (*order.Order, error) {
			require.Equal(t, o.Reference, ref)
			return o, nil
		},
	}
	engine := newCallbackRouter(orderRepo, &stubNotificationRepo{}, nil)

	w := postCallback(engine, signedCallback(t, o.Reference, "SUCCESS", 3998))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, order.StatusPaid, o.Status)
}

func TestCallbackReplayStillAcknowledgesOK(t *testing.T) {
	o := pendingOrder(t)
	recorded, err := payment.NewNotification(payment.IncomingNotification{
		OrderRef:    o.Reference,
		Status:      "SUCCESS",
		AmountMinor: 3998,
		Signature:   "sig",
	}, o.ID, payment.OutcomeSuccess)
	require.NoError(t, err)

	notifRepo := &stubNotificationRepo{
		findByRef: func(_ context.Context, _ string) (*payment.Notification, error) {
			return recorded, nil
		},
	}
	engine := newCallbackRouter(&stubOrderRepo{}, notifRepo, nil)

	w := postCallback(engine, signedCallback(t, o.Reference, "SUCCESS", 3998))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCallbackBadSignatureFails(t *testing.T) {
	o := pendingOrder(t)
	engine := newCallbackRouter(&stubOrderRepo{}, &stubNotificationRepo{}, nil)

	body, err := json.Marshal(gin.H{
		"order_ref": o.Reference,
		"status":    "SUCCESS",
		"amount":    3998,
		"signature": "bm90LXRoZS1yaWdodC1zaWc=",
	})
	require.NoError(t, err)

	w := postCallback(engine, body)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "FAIL", w.Body.String())
}

func TestCallbackUnknownReferenceFails(t *testing.T) {
	engine := newCallbackRouter(&stubOrderRepo{}, &stubNotificationRepo{}, nil)

	w := postCallback(engine, signedCallback(t, "NOSUCHREF", "SUCCESS", 100))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FAIL", w.Body.String())
}

func TestCallbackMalformedBodyFails(t *testing.T) {
	engine := newCallbackRouter(&stubOrderRepo{}, &stubNotificationRepo{}, nil)

	w := postCallback(engine, []byte(`{"order_ref": `))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FAIL", w.Body.String())
}
