package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

// activeMembership matches a team membership of u.id in a period bracketing $1.
const activeMembership = `SELECT 1 FROM student_meta tm
        JOIN academic_periods tp ON tp.id = tm.academic_period_id
        WHERE tm.student_id = u.id AND tm.datatype = 'Athletic_Team_ID' AND tp.start_date <= $1 AND tp.end_date >= $1`

// Demographics come from the most recent active period and are resolved through meta_codes.
const studentSearchSelect = `SELECT u.id, u.username, u.firstname, u.lastname, COALESCE(u.email, '') AS email,
        COALESCE(st.universal_id, '') AS universal_id,
        COALESCE(demo.college, '') AS college,
        COALESCE(demo.major, '') AS major,
        COALESCE(demo.classification, '') AS classification
        FROM users u
        JOIN students st ON st.user_id = u.id
        LEFT JOIN LATERAL (
            SELECT COALESCE(cc.description, d.college) AS college,
                COALESCE(mc.description, d.major) AS major,
                d.major AS major_code,
                d.classification
            FROM (
                SELECT MAX(CASE WHEN sm.datatype = 'college' THEN sm.data END) AS college,
                    MAX(CASE WHEN sm.datatype = 'major' THEN sm.data END) AS major,
                    MAX(CASE WHEN sm.datatype = 'classification' THEN sm.data END) AS classification
                FROM student_meta sm
                JOIN academic_periods ap ON ap.id = sm.academic_period_id
                WHERE sm.student_id = u.id AND ap.start_date <= $1 AND ap.end_date >= $1
                GROUP BY sm.academic_period_id, ap.start_date
                ORDER BY ap.start_date DESC
                LIMIT 1
            ) d
            LEFT JOIN meta_codes cc ON cc.datatype = 'college' AND cc.code = d.college
            LEFT JOIN meta_codes mc ON mc.datatype = 'major' AND mc.code = d.major
        ) demo ON TRUE`

// StudentRepository reads student-athletes from the LMS store.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Search returns athletes with an active-period team membership that the policy
// covers and that satisfy every populated filter, ordered by last then first name.
// Sports are not attached; see SportsForStudents.
func (r *StudentRepository) Search(ctx context.Context, criteria models.StudentSearchCriteria) ([]models.StudentAthlete, error) {
	args := []interface{}{criteria.Now}
	conditions := []string{fmt.Sprintf("EXISTS (%s)", activeMembership)}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	policy := criteria.Policy
	if !policy.AllSports {
		var scope []string
		if len(policy.SportCodes) > 0 {
			scope = append(scope, fmt.Sprintf("EXISTS (%s AND tm.data = ANY(%s))", activeMembership, next(pq.Array(policy.SportCodes))))
		}
		if len(policy.StudentIDs) > 0 {
			scope = append(scope, fmt.Sprintf("u.id = ANY(%s)", next(pq.Array(policy.StudentIDs))))
		}
		if len(scope) == 0 {
			return []models.StudentAthlete{}, nil
		}
		conditions = append(conditions, "("+strings.Join(scope, " OR ")+")")
	}

	filter := criteria.Filter
	if filter.UniversalID != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(st.universal_id) LIKE %s", next(containsPattern(filter.UniversalID))))
	}
	if filter.Username != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.username) LIKE %s", next(containsPattern(filter.Username))))
	}
	if filter.FirstName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.firstname) LIKE %s", next(containsPattern(filter.FirstName))))
	}
	if filter.LastName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.lastname) LIKE %s", next(containsPattern(filter.LastName))))
	}
	if filter.Major != "" {
		p := next(containsPattern(filter.Major))
		conditions = append(conditions, fmt.Sprintf("(LOWER(demo.major) LIKE %s OR LOWER(demo.major_code) LIKE %s)", p, p))
	}
	if filter.Classification != "" {
		conditions = append(conditions, fmt.Sprintf("demo.classification = %s", next(filter.Classification)))
	}
	if filter.Sport != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (%s AND tm.data = %s)", activeMembership, next(filter.Sport)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY u.lastname ASC, u.firstname ASC, u.id ASC", studentSearchSelect, strings.Join(conditions, " AND "))
	if criteria.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", criteria.Limit)
	}

	var rows []models.StudentAthlete
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return dedupeStudents(rows), nil
}

// SportsForStudents returns the active-period sports of each student, sorted by name.
func (r *StudentRepository) SportsForStudents(ctx context.Context, studentIDs []int64, now time.Time) (map[int64][]models.Sport, error) {
	result := make(map[int64][]models.Sport, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	const query = `SELECT DISTINCT tm.student_id, s.id, s.code, s.name
        FROM student_meta tm
        JOIN academic_periods ap ON ap.id = tm.academic_period_id
        JOIN sports s ON s.code = tm.data
        WHERE tm.datatype = 'Athletic_Team_ID' AND tm.student_id = ANY($1) AND ap.start_date <= $2 AND ap.end_date >= $2
        ORDER BY tm.student_id, s.name`
	var rows []models.StudentSport
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(studentIDs), now); err != nil {
		return nil, fmt.Errorf("load student sports: %w", err)
	}
	for _, row := range rows {
		if containsSport(result[row.StudentID], row.Sport.ID) {
			continue
		}
		result[row.StudentID] = append(result[row.StudentID], row.Sport)
	}
	for id := range result {
		sports := result[id]
		sort.SliceStable(sports, func(i, j int) bool { return sports[i].Name < sports[j].Name })
	}
	return result, nil
}

// InSports reports whether the student has an active-period membership in any of the codes.
func (r *StudentRepository) InSports(ctx context.Context, studentID int64, codes []string, now time.Time) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}
	const query = `SELECT EXISTS (
        SELECT 1 FROM student_meta tm
        JOIN academic_periods ap ON ap.id = tm.academic_period_id
        WHERE tm.student_id = $1 AND tm.datatype = 'Athletic_Team_ID' AND tm.data = ANY($2)
        AND ap.start_date <= $3 AND ap.end_date >= $3)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, studentID, pq.Array(codes), now); err != nil {
		return false, fmt.Errorf("check student sports: %w", err)
	}
	return ok, nil
}

// containsPattern builds a lower-cased LIKE pattern matching value as a literal substring.
func containsPattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(value))
	return "%" + escaped + "%"
}

func dedupeStudents(rows []models.StudentAthlete) []models.StudentAthlete {
	seen := make(map[int64]struct{}, len(rows))
	out := make([]models.StudentAthlete, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row)
	}
	return out
}

func containsSport(sports []models.Sport, id int64) bool {
	for _, s := range sports {
		if s.ID == id {
			return true
		}
	}
	return false
}
