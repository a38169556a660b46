package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	"github.com/noah-isme/sportsgrades-api/internal/repository"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

type accessRepository interface {
	ListGrantsByUser(ctx context.Context, userID int64) ([]models.AccessGrantDetail, error)
	ListGrants(ctx context.Context) ([]models.AccessGrantDetail, error)
	CreateGrants(ctx context.Context, grants []*models.AccessGrant) error
	DeleteGrant(ctx context.Context, id int64) (bool, error)
	ListStudentIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	ListStudentGrants(ctx context.Context) ([]models.StudentGrantDetail, error)
	CreateStudentGrant(ctx context.Context, grant *models.StudentGrant) error
	DeleteStudentGrant(ctx context.Context, id int64) (bool, error)
}

type accessUserRepository interface {
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type accessSportRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Sport, error)
}

type sportMembershipReader interface {
	InSports(ctx context.Context, studentID int64, codes []string, now time.Time) (bool, error)
}

// AccessService resolves which students a requester may see and manages the grants behind it.
type AccessService struct {
	repo        accessRepository
	users       accessUserRepository
	sports      accessSportRepository
	memberships sportMembershipReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(repo accessRepository, users accessUserRepository, sports accessSportRepository, memberships sportMembershipReader, validate *validator.Validate, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccessService{
		repo:        repo,
		users:       users,
		sports:      sports,
		memberships: memberships,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolve builds the requester's access policy. Administrators see every sport;
// everyone else gets the union of their sport and student grants.
func (s *AccessService) Resolve(ctx context.Context, requester models.Requester) (*models.AccessPolicy, error) {
	policy := models.NewAccessPolicy()
	if requester.IsAdmin() {
		policy.AllSports = true
		return policy, nil
	}
	if requester.UserID <= 0 {
		return policy, nil
	}

	grants, err := s.repo.ListGrantsByUser(ctx, requester.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load access grants")
	}
	for _, grant := range grants {
		if grant.AllSports() {
			policy.AllSports = true
			continue
		}
		// A grant whose sport was removed resolves to nothing.
		if grant.SportCode != nil {
			policy.AddSport(*grant.SportCode)
		}
	}

	studentIDs, err := s.repo.ListStudentIDsByUser(ctx, requester.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student grants")
	}
	for _, id := range studentIDs {
		policy.AddStudent(id)
	}
	return policy, nil
}

// CanViewStudent reports whether the policy covers the student.
func (s *AccessService) CanViewStudent(ctx context.Context, policy *models.AccessPolicy, studentID int64) (bool, error) {
	if policy.Empty() || studentID <= 0 {
		return false, nil
	}
	if policy.AllSports || policy.HasStudent(studentID) {
		return true, nil
	}
	ok, err := s.memberships.InSports(ctx, studentID, policy.SportCodes, s.now())
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student access")
	}
	return ok, nil
}

// ListGrants returns all sport grants grouped by sport label, "All Sports" first.
func (s *AccessService) ListGrants(ctx context.Context) ([]dto.AccessGrantGroup, error) {
	grants, err := s.repo.ListGrants(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list access grants")
	}
	groups := make([]dto.AccessGrantGroup, 0)
	index := make(map[string]int)
	for _, grant := range grants {
		label := grant.SportLabel()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, dto.AccessGrantGroup{Sport: label})
		}
		groups[i].Grants = append(groups[i].Grants, grant)
	}
	return groups, nil
}

// CreateGrants adds one grant per user for the requested sport.
func (s *AccessService) CreateGrants(ctx context.Context, actor models.Requester, req dto.CreateAccessGrantRequest) ([]models.AccessGrant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid access grant payload")
	}

	userIDs := uniqueIDs(req.UserIDs)
	if err := s.ensureUsers(ctx, userIDs); err != nil {
		return nil, err
	}

	var sportID *int64
	if req.SportID != nil && *req.SportID > 0 {
		if _, err := s.sports.FindByID(ctx, *req.SportID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown sport")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sport")
		}
		id := *req.SportID
		sportID = &id
	}

	now := s.now().UTC()
	pending := make([]*models.AccessGrant, 0, len(userIDs))
	for _, userID := range userIDs {
		pending = append(pending, &models.AccessGrant{
			UserID:       userID,
			SportID:      sportID,
			TimeCreated:  now,
			TimeModified: now,
			CreatedBy:    actor.UserID,
			ModifiedBy:   actor.UserID,
		})
	}
	if err := s.repo.CreateGrants(ctx, pending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access grants")
	}

	created := make([]models.AccessGrant, 0, len(pending))
	for _, grant := range pending {
		created = append(created, *grant)
	}
	s.logger.Info("access grants created",
		zap.Int64("actor_id", actor.UserID),
		zap.Int64s("user_ids", userIDs),
		zap.Bool("all_sports", sportID == nil),
	)
	return created, nil
}

// DeleteGrant removes a sport grant.
func (s *AccessService) DeleteGrant(ctx context.Context, actor models.Requester, id int64) error {
	found, err := s.repo.DeleteGrant(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete access grant")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "access grant not found")
	}
	s.logger.Info("access grant deleted", zap.Int64("actor_id", actor.UserID), zap.Int64("grant_id", id))
	return nil
}

// ListStudentGrants returns every direct student grant.
func (s *AccessService) ListStudentGrants(ctx context.Context) ([]models.StudentGrantDetail, error) {
	grants, err := s.repo.ListStudentGrants(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student grants")
	}
	if grants == nil {
		grants = []models.StudentGrantDetail{}
	}
	return grants, nil
}

// CreateStudentGrant lets a user view one student regardless of sport.
func (s *AccessService) CreateStudentGrant(ctx context.Context, actor models.Requester, req dto.CreateStudentGrantRequest) (*models.StudentGrant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student grant payload")
	}
	if err := s.ensureUsers(ctx, uniqueIDs([]int64{req.UserID, req.StudentID})); err != nil {
		return nil, err
	}

	grant := &models.StudentGrant{
		UserID:      req.UserID,
		StudentID:   req.StudentID,
		TimeCreated: s.now().UTC(),
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.CreateStudentGrant(ctx, grant); err != nil {
		if errors.Is(err, repository.ErrDuplicateGrant) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student grant already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student grant")
	}
	s.logger.Info("student grant created",
		zap.Int64("actor_id", actor.UserID),
		zap.Int64("user_id", grant.UserID),
		zap.Int64("student_id", grant.StudentID),
	)
	return grant, nil
}

// DeleteStudentGrant removes a direct student grant.
func (s *AccessService) DeleteStudentGrant(ctx context.Context, actor models.Requester, id int64) error {
	found, err := s.repo.DeleteStudentGrant(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student grant")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student grant not found")
	}
	s.logger.Info("student grant deleted", zap.Int64("actor_id", actor.UserID), zap.Int64("grant_id", id))
	return nil
}

func (s *AccessService) ensureUsers(ctx context.Context, ids []int64) error {
	existing, err := s.users.ExistingIDs(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	if len(existing) != len(ids) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown user id")
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
