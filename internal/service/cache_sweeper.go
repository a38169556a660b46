package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 4 * time.Minute

type expiredSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// CacheSweeper periodically deletes expired grade cache rows.
type CacheSweeper struct {
	cache    expiredSweeper
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewCacheSweeper constructs a sweeper running on a cron schedule such as "@every 30m".
func NewCacheSweeper(cache expiredSweeper, schedule string, logger *zap.Logger) *CacheSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &CacheSweeper{
		cache:    cache,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
	}
}

// Start registers the sweep and starts the scheduler.
func (s *CacheSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("schedule cache sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("grade cache sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CacheSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CacheSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce performs a single sweep.
func (s *CacheSweeper) RunOnce(ctx context.Context) {
	deleted, err := s.cache.Sweep(ctx)
	if err != nil {
		s.logger.Error("grade cache sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("grade cache sweep finished", zap.Int64("deleted", deleted))
}
