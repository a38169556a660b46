package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

// GradeRepository reads courses, grade items and grades from the host grading store.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// EnrolledCourses lists the distinct courses a student is enrolled in, newest first.
func (r *GradeRepository) EnrolledCourses(ctx context.Context, studentID int64) ([]models.Course, error) {
	const query = `SELECT DISTINCT c.id, c.fullname, c.shortname, c.start_date,
        COALESCE(tc.name, tm.data, '') AS term,
        COALESCE(sm.data, '') AS section
        FROM course_enrolments ce
        JOIN courses c ON c.id = ce.course_id
        LEFT JOIN course_meta tm ON tm.course_id = c.id AND tm.datatype = 'term_code'
        LEFT JOIN term_codes tc ON tc.code = tm.data
        LEFT JOIN course_meta sm ON sm.course_id = c.id AND sm.datatype = 'section_code'
        WHERE ce.user_id = $1
        ORDER BY c.start_date DESC, c.fullname ASC, c.id ASC`
	var rows []models.Course
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses for student %d: %w", studentID, err)
	}

	// Several term or section rows would repeat a course; the first one wins.
	seen := make(map[int64]struct{}, len(rows))
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		courses = append(courses, row)
	}
	return courses, nil
}

// CourseFinalGrade returns the course-total grade, or nil when none is recorded.
func (r *GradeRepository) CourseFinalGrade(ctx context.Context, courseID, studentID int64) (*float64, error) {
	const query = `SELECT gg.final_grade
        FROM grade_items gi
        JOIN grade_grades gg ON gg.item_id = gi.id AND gg.user_id = $2
        WHERE gi.course_id = $1 AND gi.item_type = 'course'
        ORDER BY gi.id
        LIMIT 1`
	var grade sql.NullFloat64
	err := r.db.QueryRowxContext(ctx, query, courseID, studentID).Scan(&grade)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("course %d final grade: %w", courseID, err)
	}
	if !grade.Valid {
		return nil, nil
	}
	value := grade.Float64
	return &value, nil
}

// GradeItems lists the gradable items of a course with the student's grade, excluding the course total.
func (r *GradeRepository) GradeItems(ctx context.Context, courseID, studentID int64) ([]models.GradeItemRecord, error) {
	const query = `SELECT gi.id, gi.item_name, gi.item_type, COALESCE(gi.item_module, '') AS item_module,
        gi.grade_max, gi.weight, gi.weight_override, gg.final_grade
        FROM grade_items gi
        LEFT JOIN grade_grades gg ON gg.item_id = gi.id AND gg.user_id = $2
        WHERE gi.course_id = $1 AND gi.item_type <> 'course'
        ORDER BY gi.sort_order ASC, gi.id ASC`
	var items []models.GradeItemRecord
	if err := r.db.SelectContext(ctx, &items, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("course %d grade items: %w", courseID, err)
	}
	return items, nil
}
