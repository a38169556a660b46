package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

// DefaultGradeCacheTTL is used when no TTL is configured.
const DefaultGradeCacheTTL = time.Hour

// GradeCacheStore abstracts persistence for cached grade reports.
type GradeCacheStore interface {
	Latest(ctx context.Context, studentID int64, now time.Time) (*models.CachedGradeResult, error)
	Insert(ctx context.Context, row *models.CachedGradeResult) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByStudent(ctx context.Context, studentID int64) error
}

// ResultCacheService stores computed grade reports for a bounded time.
// Storage failures never fail a lookup: reads degrade to a miss and writes are logged.
type ResultCacheService struct {
	store      GradeCacheStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewResultCacheService constructs a result cache service.
func NewResultCacheService(store GradeCacheStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *ResultCacheService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultGradeCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCacheService{store: store, metrics: metrics, defaultTTL: defaultTTL, logger: logger, now: time.Now}
}

// Enabled indicates whether a backing store is configured.
func (s *ResultCacheService) Enabled() bool {
	return s != nil && s.store != nil
}

// Get returns the newest unexpired payload for the student. The boolean is false on a miss.
func (s *ResultCacheService) Get(ctx context.Context, studentID int64) ([]byte, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	row, err := s.store.Latest(ctx, studentID, s.now())
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("grade cache read failed", zap.Int64("student_id", studentID), zap.Error(err))
		}
		return nil, false
	}
	s.metrics.RecordCacheOperation(true, duration)
	return row.Payload, true
}

// Put appends a payload expiring after ttl, or the default TTL when ttl is not positive.
func (s *ResultCacheService) Put(ctx context.Context, studentID int64, payload []byte, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	created := s.now()
	row := &models.CachedGradeResult{
		StudentID:   studentID,
		Payload:     payload,
		TimeCreated: created,
		TimeExpires: created.Add(ttl),
	}
	start := time.Now()
	if err := s.store.Insert(ctx, row); err != nil {
		s.logger.Warn("grade cache write failed", zap.Int64("student_id", studentID), zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
}

// Invalidate removes every cached payload of the student.
func (s *ResultCacheService) Invalidate(ctx context.Context, studentID int64) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.store.DeleteByStudent(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge cached grades")
	}
	s.logger.Info("grade cache invalidated", zap.Int64("student_id", studentID))
	return nil
}

// Sweep deletes expired rows and returns how many were removed.
func (s *ResultCacheService) Sweep(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	deleted, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.AddSweepDeleted(deleted)
	return deleted, nil
}
