package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

const gradeCacheKeyPrefix = "sportsgrades:grades:"

// CacheRepository keeps grade reports in Redis, one key per student, expiring natively.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// GradeCacheKey returns the Redis key holding a student's grade report.
func GradeCacheKey(studentID int64) string {
	return fmt.Sprintf("%s%d", gradeCacheKeyPrefix, studentID)
}

// Latest retrieves the cached row for the student or appErrors.ErrCacheMiss.
func (r *CacheRepository) Latest(ctx context.Context, studentID int64, now time.Time) (*models.CachedGradeResult, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	key := GradeCacheKey(studentID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var row models.CachedGradeResult
	if err := json.Unmarshal(raw, &row); err != nil {
		r.logger.Warn("dropping unreadable cached grades", zap.String("key", key), zap.Error(err))
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.Warn("failed to drop cached grades", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.ErrCacheMiss
	}
	if !row.TimeExpires.After(now) {
		return nil, appErrors.ErrCacheMiss
	}
	return &row, nil
}

// Insert stores the row with a TTL matching its expiry, replacing any older value.
func (r *CacheRepository) Insert(ctx context.Context, row *models.CachedGradeResult) error {
	ttl := row.TimeExpires.Sub(row.TimeCreated)
	if ttl <= 0 {
		r.logger.Debug("skipping already expired grade report", zap.Int64("student_id", row.StudentID), zap.Time("time_expires", row.TimeExpires))
		return nil
	}
	if r.client == nil {
		return nil
	}
	key := GradeCacheKey(row.StudentID)
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts expired keys itself.
func (r *CacheRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// DeleteByStudent removes the student's cached report.
func (r *CacheRepository) DeleteByStudent(ctx context.Context, studentID int64) error {
	if r.client == nil {
		return nil
	}
	key := GradeCacheKey(studentID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
