package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

// aggregationTimeout bounds a shared aggregation independently of the callers waiting on it.
const aggregationTimeout = 30 * time.Second

type gradeRepository interface {
	EnrolledCourses(ctx context.Context, studentID int64) ([]models.Course, error)
	CourseFinalGrade(ctx context.Context, courseID, studentID int64) (*float64, error)
	GradeItems(ctx context.Context, courseID, studentID int64) ([]models.GradeItemRecord, error)
}

type studentAccessChecker interface {
	Resolve(ctx context.Context, requester models.Requester) (*models.AccessPolicy, error)
	CanViewStudent(ctx context.Context, policy *models.AccessPolicy, studentID int64) (bool, error)
}

type gradeResultCache interface {
	Get(ctx context.Context, studentID int64) ([]byte, bool)
	Put(ctx context.Context, studentID int64, payload []byte, ttl time.Duration)
	Invalidate(ctx context.Context, studentID int64) error
}

// GradeService aggregates per-course grades for a student behind the access check and result cache.
type GradeService struct {
	grades  gradeRepository
	access  studentAccessChecker
	cache   gradeResultCache
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewGradeService constructs a GradeService. A non-positive ttl falls back to DefaultGradeCacheTTL.
func NewGradeService(grades gradeRepository, access studentAccessChecker, cache gradeResultCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultGradeCacheTTL
	}
	return &GradeService{
		grades:  grades,
		access:  access,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
}

// CourseGrades returns the grade report of a student. The boolean reports a cache hit.
func (s *GradeService) CourseGrades(ctx context.Context, requester models.Requester, studentID int64) (*models.GradeReport, bool, error) {
	if studentID <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	if err := s.authorize(ctx, requester, studentID); err != nil {
		return nil, false, err
	}

	if payload, ok := s.cache.Get(ctx, studentID); ok {
		var report models.GradeReport
		err := json.Unmarshal(payload, &report)
		if err == nil {
			return &report, true, nil
		}
		s.logger.Warn("discarding unreadable cached grades", zap.Int64("student_id", studentID), zap.Error(err))
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatInt(studentID, 10), func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(shared, aggregationTimeout)
		defer cancel()
		return s.compute(computeCtx, studentID)
	})
	select {
	case <-ctx.Done():
		return nil, false, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "grade request cancelled")
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.GradeReport), false, nil
	}
}

// PurgeCache drops the cached report of a student.
func (s *GradeService) PurgeCache(ctx context.Context, requester models.Requester, studentID int64) error {
	if !requester.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")
	}
	if studentID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	return s.cache.Invalidate(ctx, studentID)
}

func (s *GradeService) authorize(ctx context.Context, requester models.Requester, studentID int64) error {
	policy, err := s.access.Resolve(ctx, requester)
	if err != nil {
		return err
	}
	ok, err := s.access.CanViewStudent(ctx, policy, studentID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("grade access denied", zap.Int64("user_id", requester.UserID), zap.Int64("student_id", studentID))
		return appErrors.Clone(appErrors.ErrNoAccess, "")
	}
	return nil
}

func (s *GradeService) compute(ctx context.Context, studentID int64) (*models.GradeReport, error) {
	start := time.Now()
	courses, err := s.grades.EnrolledCourses(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	results := make([]models.CourseGrade, 0, len(courses))
	for _, course := range courses {
		results = append(results, s.courseGrade(ctx, course, studentID))
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
	})

	report := &models.GradeReport{StudentID: studentID, Courses: results, GeneratedAt: s.now().UTC()}
	s.metrics.ObserveAggregation(time.Since(start))

	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("grade report not cached", zap.Int64("student_id", studentID), zap.Error(err))
		return report, nil
	}
	s.cache.Put(ctx, studentID, payload, s.ttl)
	return report, nil
}

// courseGrade builds one course. Lookup failures degrade to placeholders.
func (s *GradeService) courseGrade(ctx context.Context, course models.Course, studentID int64) models.CourseGrade {
	final, err := s.grades.CourseFinalGrade(ctx, course.ID, studentID)
	if err != nil {
		s.logger.Warn("final grade unavailable", zap.Int64("student_id", studentID), zap.Int64("course_id", course.ID), zap.Error(err))
		final = nil
	}

	records, err := s.grades.GradeItems(ctx, course.ID, studentID)
	if err != nil {
		s.logger.Warn("grade items unavailable", zap.Int64("student_id", studentID), zap.Int64("course_id", course.ID), zap.Error(err))
		records = nil
	}
	items := make([]models.GradeItem, 0, len(records))
	for _, rec := range records {
		if rec.ItemType == models.GradeItemTypeCourse {
			continue
		}
		items = append(items, buildGradeItem(rec))
	}

	return models.CourseGrade{
		ID:                  course.ID,
		FullName:            course.FullName,
		ShortName:           course.ShortName,
		Section:             course.Section,
		Term:                course.Term,
		StartDate:           course.StartDate,
		FinalGrade:          final,
		FinalGradeFormatted: formatNumber(final),
		LetterGrade:         letterGrade(final),
		GradeItems:          items,
	}
}
