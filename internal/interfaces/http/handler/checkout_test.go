package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

func newCheckoutRouter(orderRepo order.Repository, stockRepo *stubStockRepo, catalogRepo catalog.Repository) *gin.Engine {
	if stockRepo == nil {
		stockRepo = &stubStockRepo{}
	}
	scope := apporder.NewNoOpTransactionScope(orderRepo, stockRepo)
	svc := apporder.NewCheckoutService(scope, orderRepo, catalogRepo)
	h := NewCheckoutHandler(svc)

	engine := gin.New()
	engine.POST("/api/v1/checkout", h.Checkout)
	engine.GET("/api/v1/orders/track", h.Track)
	return engine
}

func checkoutBody(t *testing.T, productID uuid.UUID, qty int64) []byte {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"guest_name":  "Jane",
		"guest_email": "jane@example.com",
		"items": []gin.H{
			{"product_id": productID, "quantity": qty},
		},
		"address": gin.H{
			"line1":       "1 Main St",
			"city":        "Springfield",
			"postal_code": "12345",
		},
	})
	require.NoError(t, err)
	return body
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCheckoutCreatesOrder(t *testing.T) {
	product := testProduct(t, 19.99)
	catalogRepo := &stubCatalogRepo{
		findByIDs: func(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
			require.Equal(t, []uuid.UUID{product.ID}, ids)
			return []catalog.Product{*product}, nil
		},
	}
	var created *order.Order
	orderRepo := &stubOrderRepo{
		create: func(_ context.Context, o *order.Order) error {
			created = o
			return nil
		},
	}

	engine := newCheckoutRouter(orderRepo, nil, catalogRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(checkoutBody(t, product.ID, 2)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, created)
	assert.Equal(t, order.StatusPendingPayment, created.Status)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	engine := newCheckoutRouter(&stubOrderRepo{}, nil, &stubCatalogRepo{})

	body, err := json.Marshal(gin.H{
		"guest_email": "jane@example.com",
		"items":       []gin.H{},
		"address": gin.H{
			"line1":       "1 Main St",
			"city":        "Springfield",
			"postal_code": "12345",
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	product := testProduct(t, 19.99)
	catalogRepo := &stubCatalogRepo{
		findByIDs: func(context.Context, []uuid.UUID) ([]catalog.Product, error) {
			return []catalog.Product{*product}, nil
		},
	}
	stockRepo := &stubStockRepo{
		reserve: func(context.Context, uuid.UUID, int64) error {
			return shared.ErrInsufficientStock
		},
	}

	engine := newCheckoutRouter(&stubOrderRepo{}, stockRepo, catalogRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(checkoutBody(t, product.ID, 500)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
}

func TestTrackReturnsOrder(t *testing.T) {
	o := pendingOrder(t)
	orderRepo := &stubOrderRepo{
		findByRefEmail: func(_ context.Context, ref, email string) (*order.Order, error) {
			require.Equal(t, o.Reference, ref)
			require.Equal(t, "jane@example.com", email)
			return o, nil
		},
	}

	engine := newCheckoutRouter(orderRepo, nil, &stubCatalogRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track?reference="+o.Reference+"&email=jane@example.com", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestTrackUnknownOrderIs404(t *testing.T) {
	engine := newCheckoutRouter(&stubOrderRepo{}, nil, &stubCatalogRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track?reference=NOPE&email=jane@example.com", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}
