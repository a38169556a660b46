package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

type studentSearchRepository interface {
	Search(ctx context.Context, criteria models.StudentSearchCriteria) ([]models.StudentAthlete, error)
	SportsForStudents(ctx context.Context, studentIDs []int64, now time.Time) (map[int64][]models.Sport, error)
}

type policyResolver interface {
	Resolve(ctx context.Context, requester models.Requester) (*models.AccessPolicy, error)
}

// SearchService finds student-athletes visible to the requester.
type SearchService struct {
	students   studentSearchRepository
	access     policyResolver
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	maxResults int
	now        func() time.Time
}

// NewSearchService constructs a SearchService. maxResults of zero means unlimited.
func NewSearchService(students studentSearchRepository, access policyResolver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, maxResults int) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxResults < 0 {
		maxResults = 0
	}
	return &SearchService{
		students:   students,
		access:     access,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		maxResults: maxResults,
		now:        time.Now,
	}
}

// Search returns the students matching every populated filter field within the requester's access.
// A requester without grants gets a successful empty result.
func (s *SearchService) Search(ctx context.Context, filter models.StudentSearchFilter, requester models.Requester) (*dto.SearchResponse, error) {
	filter = filter.Normalize()
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search filter")
	}

	policy, err := s.access.Resolve(ctx, requester)
	if err != nil {
		s.logger.Error("student search failed", zap.Int64("user_id", requester.UserID), zap.Error(err))
		return nil, searchFailed(err)
	}
	if policy.Empty() {
		s.metrics.ObserveSearch(0)
		return &dto.SearchResponse{Success: true, Results: []models.StudentAthlete{}}, nil
	}

	if filter.IsEmpty() {
		s.logger.Info("unfiltered student search", zap.Int64("user_id", requester.UserID), zap.Bool("all_sports", policy.AllSports))
	}

	now := s.now()
	students, err := s.students.Search(ctx, models.StudentSearchCriteria{
		Filter: filter,
		Policy: *policy,
		Now:    now,
		Limit:  s.maxResults,
	})
	if err != nil {
		s.logger.Error("student search failed", zap.Int64("user_id", requester.UserID), zap.Error(err))
		return nil, searchFailed(err)
	}

	if len(students) > 0 {
		ids := make([]int64, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
		sports, err := s.students.SportsForStudents(ctx, ids, now)
		if err != nil {
			s.logger.Error("student search failed", zap.Int64("user_id", requester.UserID), zap.Error(err))
			return nil, searchFailed(err)
		}
		for i := range students {
			students[i].Sports = sports[students[i].ID]
			if students[i].Sports == nil {
				students[i].Sports = []models.Sport{}
			}
		}
	}

	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	if students == nil {
		students = []models.StudentAthlete{}
	}

	s.metrics.ObserveSearch(len(students))
	s.logger.Debug("student search",
		zap.Int64("user_id", requester.UserID),
		zap.Bool("all_sports", policy.AllSports),
		zap.Int("results", len(students)),
	)
	return &dto.SearchResponse{Success: true, Results: students}, nil
}

func searchFailed(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "An error occurred while searching.")
}
