package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

// GradeCacheRepository stores computed grade reports in an insert-only table.
type GradeCacheRepository struct {
	db *sqlx.DB
}

// NewGradeCacheRepository constructs a GradeCacheRepository.
func NewGradeCacheRepository(db *sqlx.DB) *GradeCacheRepository {
	return &GradeCacheRepository{db: db}
}

// Latest returns the newest unexpired row for the student or appErrors.ErrCacheMiss.
func (r *GradeCacheRepository) Latest(ctx context.Context, studentID int64, now time.Time) (*models.CachedGradeResult, error) {
	const query = `SELECT id, student_id, payload, time_created, time_expires
        FROM sportsgrades_cache
        WHERE student_id = $1 AND time_expires > $2
        ORDER BY time_created DESC, id DESC
        LIMIT 1`
	var row models.CachedGradeResult
	if err := r.db.GetContext(ctx, &row, query, studentID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("read grade cache for student %d: %w", studentID, err)
	}
	return &row, nil
}

// Insert appends a cache row. Existing rows are never updated.
func (r *GradeCacheRepository) Insert(ctx context.Context, row *models.CachedGradeResult) error {
	const query = `INSERT INTO sportsgrades_cache (student_id, payload, time_created, time_expires)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, row.StudentID, row.Payload, row.TimeCreated, row.TimeExpires).Scan(&row.ID); err != nil {
		return fmt.Errorf("write grade cache for student %d: %w", row.StudentID, err)
	}
	return nil
}

// DeleteExpired removes rows that expired at or before now.
func (r *GradeCacheRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sportsgrades_cache WHERE time_expires <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired grade cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired grade cache: %w", err)
	}
	return n, nil
}

// DeleteByStudent removes every cached row of the student.
func (r *GradeCacheRepository) DeleteByStudent(ctx context.Context, studentID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sportsgrades_cache WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("purge grade cache for student %d: %w", studentID, err)
	}
	return nil
}
