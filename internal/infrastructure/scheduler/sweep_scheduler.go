package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// SweepScheduler periodically cancels orders that sat in PENDING_PAYMENT past
// the checkout timeout, releasing their stock reservations
type SweepScheduler struct {
	service   *apporder.AbandonedOrderService
	logger    *zap.Logger
	interval  time.Duration
	enabled   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepScheduler creates a new SweepScheduler
func NewSweepScheduler(service *apporder.AbandonedOrderService, cfg config.SweepConfig, logger *zap.Logger) *SweepScheduler {
	return &SweepScheduler{
		service:  service,
		logger:   logger,
		interval: cfg.Interval,
		enabled:  cfg.Enabled,
	}
}

// Start starts the sweep loop
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.enabled {
		s.mu.Unlock()
		s.logger.Info("abandoned checkout sweep is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("abandoned checkout sweep started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("abandoned checkout sweep stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("abandoned checkout sweep stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *SweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sweep loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *SweepScheduler) execute(ctx context.Context) {
	start := time.Now()
	swept, err := s.service.SweepOnce(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("abandoned checkout sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if swept > 0 {
		s.logger.Info("abandoned checkout sweep completed",
			zap.Duration("duration", duration),
			zap.Int("swept", swept),
		)
	}
}
