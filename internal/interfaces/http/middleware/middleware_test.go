package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDGenerated(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		assert.NotEmpty(t, GetRequestID(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Header().Get("X-Request-ID"), 32)
}

func TestRequestIDPropagated(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id-1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id-1", w.Header().Get("X-Request-ID"))
}

func TestBodyLimitRejectsOversizedBody(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(16))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestBodyLimitAllowsSmallBody(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(1024))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func newAuthEngine(t *testing.T, jwtService *auth.JWTService) *gin.Engine {
	t.Helper()
	engine := gin.New()
	engine.GET("/admin/ping", AdminAuth(jwtService, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, GetAdminOperator(c))
	})
	return engine
}

func TestAdminAuthMissingToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "storefront", Expiration: time.Hour})
	engine := newAuthEngine(t, jwtService)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAdminAuthInvalidToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "storefront", Expiration: time.Hour})
	engine := newAuthEngine(t, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "storefront", Expiration: -time.Minute})
	token, _, err := jwtService.GenerateToken("ops@example.com")
	require.NoError(t, err)

	engine := newAuthEngine(t, jwtService)
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAdminAuthValidTokenSetsOperator(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "storefront", Expiration: time.Hour})
	token, _, err := jwtService.GenerateToken("ops@example.com")
	require.NoError(t, err)

	engine := newAuthEngine(t, jwtService)
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@example.com", w.Body.String())
}
