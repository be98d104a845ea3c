package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers collects every HTTP handler the router mounts
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentCallbackHandler
	Shipping *handler.ShippingHandler
	Admin    *handler.AdminHandler
	System   *handler.SystemHandler
}

// New assembles the gin engine with middleware and all routes
func New(cfg *config.Config, handlers Handlers, jwtService *auth.JWTService, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", handlers.System.Health)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/system/info", handlers.System.GetSystemInfo)

		v1.POST("/checkout", handlers.Checkout.Checkout)
		v1.GET("/orders/track", handlers.Checkout.Track)

		v1.POST("/payment/callback", handlers.Payment.Callback)

		admin := v1.Group("/admin", middleware.AdminAuth(jwtService, log))
		{
			admin.GET("/orders", handlers.Admin.ListOrders)
			admin.GET("/orders/:id", handlers.Admin.GetOrder)
			admin.POST("/orders/:id/cancel", handlers.Admin.CancelOrder)
			admin.POST("/orders/:id/ship", handlers.Admin.MarkShipped)
			admin.POST("/orders/:id/deliver", handlers.Admin.MarkDelivered)
			admin.POST("/orders/:id/refund", handlers.Admin.Refund)

			admin.POST("/orders/:id/shipping/quotes", handlers.Shipping.RequestQuotes)
			admin.GET("/orders/:id/shipping/quotes", handlers.Shipping.GetQuotes)
			admin.POST("/shipments/:id/confirm", handlers.Shipping.Confirm)

			admin.GET("/stock/:productId", handlers.Admin.StockSnapshot)
		}
	}

	return engine
}
