package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	apppayment "github.com/storefront/backend/internal/application/payment"
	appshipping "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	infrapayment "github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	infrashipping "github.com/storefront/backend/internal/infrastructure/shipping"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)

	// Event bus with the built-in subscribers
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLowStockAlertHandler(log))
	bus.Subscribe(event.NewAuditLogHandler(log))
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	checkoutService := apporder.NewCheckoutService(
		persistence.NewGormCheckoutScope(db.DB), orderRepo, productRepo)
	checkoutService.SetEventPublisher(bus)

	reconciliation := apppayment.NewReconciliationService(
		infrapayment.NewHMACVerifier(cfg.Payment.MerchantSecret),
		persistence.NewGormReconciliationScope(db.DB),
		notificationRepo,
		log,
	)
	reconciliation.SetEventPublisher(bus)

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()
	reconciliation.SetIdempotencyStore(idempotencyStore)

	quoteBroker := appshipping.NewQuoteBroker(
		infrashipping.NewHTTPAggregator(cfg.Shipping),
		quoteRepo, orderRepo, productRepo, cfg.Shipping.QuoteTTL, log)
	quoteBroker.SetEventPublisher(bus)

	abandonedOrders := apporder.NewAbandonedOrderService(
		persistence.NewGormCheckoutScope(db.DB), orderRepo,
		cfg.Sweep.CheckoutTimeout, cfg.Sweep.BatchSize, log)
	abandonedOrders.SetEventPublisher(bus)

	sweeper := scheduler.NewSweepScheduler(abandonedOrders, cfg.Sweep, log)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start abandonment sweeper", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(cfg, router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Payment:  handler.NewPaymentCallbackHandler(reconciliation),
		Shipping: handler.NewShippingHandler(quoteBroker),
		Admin:    handler.NewAdminHandler(checkoutService, stockRepo),
		System:   handler.NewSystemHandler(db),
	}, jwtService, log)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Error("Sweeper shutdown failed", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
