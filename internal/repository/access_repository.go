package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

const grantDetailSelect = `SELECT a.id, a.user_id, a.sport_id, a.time_created, a.time_modified, a.created_by, a.modified_by,
        u.username, u.firstname, u.lastname, s.code AS sport_code, s.name AS sport_name
        FROM sportsgrades_access a
        JOIN users u ON u.id = a.user_id
        LEFT JOIN sports s ON s.id = a.sport_id`

const studentGrantDetailSelect = `SELECT sa.id, sa.user_id, sa.student_id, sa.time_created, sa.created_by,
        u.username, u.firstname, u.lastname, su.firstname AS student_firstname, su.lastname AS student_lastname
        FROM sportsgrades_student_access sa
        JOIN users u ON u.id = sa.user_id
        JOIN users su ON su.id = sa.student_id`

// ErrDuplicateGrant is returned when a student grant already exists.
var ErrDuplicateGrant = errors.New("grant already exists")

// AccessRepository persists sport and student access grants.
type AccessRepository struct {
	db *sqlx.DB
}

// NewAccessRepository constructs an AccessRepository.
func NewAccessRepository(db *sqlx.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// ListGrantsByUser returns every sport grant held by the user.
func (r *AccessRepository) ListGrantsByUser(ctx context.Context, userID int64) ([]models.AccessGrantDetail, error) {
	query := grantDetailSelect + " WHERE a.user_id = $1 ORDER BY a.id"
	var grants []models.AccessGrantDetail
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("list grants for user %d: %w", userID, err)
	}
	return grants, nil
}

// ListGrants returns all sport grants, "All Sports" grants first, then by sport and user name.
func (r *AccessRepository) ListGrants(ctx context.Context) ([]models.AccessGrantDetail, error) {
	query := grantDetailSelect + " ORDER BY s.name ASC NULLS FIRST, u.lastname ASC, u.firstname ASC, a.id ASC"
	var grants []models.AccessGrantDetail
	if err := r.db.SelectContext(ctx, &grants, query); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// CreateGrants inserts the grants in one transaction and fills in their IDs.
func (r *AccessRepository) CreateGrants(ctx context.Context, grants []*models.AccessGrant) error {
	if len(grants) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grants tx: %w", err)
	}
	const query = `INSERT INTO sportsgrades_access (user_id, sport_id, time_created, time_modified, created_by, modified_by)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	for _, grant := range grants {
		if grant.TimeCreated.IsZero() {
			grant.TimeCreated = now
		}
		grant.TimeModified = now
		if err := tx.QueryRowxContext(ctx, query, grant.UserID, grant.SportID, grant.TimeCreated, grant.TimeModified, grant.CreatedBy, grant.ModifiedBy).Scan(&grant.ID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grant for user %d: %w", grant.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grants: %w", err)
	}
	return nil
}

// DeleteGrant removes a sport grant. It reports false when no row matched.
func (r *AccessRepository) DeleteGrant(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sportsgrades_access WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete grant %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete grant %d: %w", id, err)
	}
	return n > 0, nil
}

// ListStudentIDsByUser returns the students directly granted to the user.
func (r *AccessRepository) ListStudentIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM sportsgrades_student_access WHERE user_id = $1 ORDER BY student_id`, userID); err != nil {
		return nil, fmt.Errorf("list student grants for user %d: %w", userID, err)
	}
	return ids, nil
}

// ListStudentGrants returns every student grant with display names.
func (r *AccessRepository) ListStudentGrants(ctx context.Context) ([]models.StudentGrantDetail, error) {
	query := studentGrantDetailSelect + " ORDER BY u.lastname ASC, u.firstname ASC, su.lastname ASC, su.firstname ASC"
	var grants []models.StudentGrantDetail
	if err := r.db.SelectContext(ctx, &grants, query); err != nil {
		return nil, fmt.Errorf("list student grants: %w", err)
	}
	return grants, nil
}

// CreateStudentGrant inserts a student grant, returning ErrDuplicateGrant when the pair exists.
func (r *AccessRepository) CreateStudentGrant(ctx context.Context, grant *models.StudentGrant) error {
	if grant.TimeCreated.IsZero() {
		grant.TimeCreated = time.Now().UTC()
	}
	const query = `INSERT INTO sportsgrades_student_access (user_id, student_id, time_created, created_by)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, student_id) DO NOTHING
        RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, grant.UserID, grant.StudentID, grant.TimeCreated, grant.CreatedBy).Scan(&grant.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateGrant
	}
	if err != nil {
		return fmt.Errorf("insert student grant: %w", err)
	}
	return nil
}

// DeleteStudentGrant removes a student grant. It reports false when no row matched.
func (r *AccessRepository) DeleteStudentGrant(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sportsgrades_student_access WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student grant %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student grant %d: %w", id, err)
	}
	return n > 0, nil
}
