package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reaper periodically ends idle sessions.
type Reaper interface {
	Start(ctx context.Context)
	Stop()
}

type reaper struct {
	registry SessionRegistry
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewReaper(registry SessionRegistry, interval time.Duration, logger *zap.Logger) Reaper {
	return &reaper{
		registry: registry,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start implements Reaper.
func (r *reaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)

	r.logger.Info("🚀 Session reaper started", zap.Duration("interval", r.interval))
}

// Stop implements Reaper.
func (r *reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
	r.logger.Info("✅ Session reaper stopped")
}

func (r *reaper) run(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if ended := r.registry.Sweep(ctx, now); ended > 0 {
				r.logger.Info("🧹 Expired sessions ended",
					zap.Int("ended", ended),
					zap.Int("remaining", r.registry.Len()),
				)
			}
		}
	}
}
