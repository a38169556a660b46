package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	"github.com/noah-isme/sportsgrades-api/internal/repository"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

type fakeAccessRepo struct {
	grants        []models.AccessGrantDetail
	studentIDs    []int64
	studentGrants []models.StudentGrantDetail
	created       []*models.AccessGrant
	createdStud   *models.StudentGrant
	grantsErr     error
	createErr     error
	deleteFound   bool
	listCalls     int
}

func (f *fakeAccessRepo) ListGrantsByUser(context.Context, int64) ([]models.AccessGrantDetail, error) {
	f.listCalls++
	return f.grants, f.grantsErr
}

func (f *fakeAccessRepo) ListGrants(context.Context) ([]models.AccessGrantDetail, error) {
	return f.grants, f.grantsErr
}

func (f *fakeAccessRepo) CreateGrants(_ context.Context, grants []*models.AccessGrant) error {
	if f.createErr != nil {
		return f.createErr
	}
	for i, g := range grants {
		g.ID = int64(i + 1)
	}
	f.created = grants
	return nil
}

func (f *fakeAccessRepo) DeleteGrant(context.Context, int64) (bool, error) {
	return f.deleteFound, nil
}

func (f *fakeAccessRepo) ListStudentIDsByUser(context.Context, int64) ([]int64, error) {
	return f.studentIDs, nil
}

func (f *fakeAccessRepo) ListStudentGrants(context.Context) ([]models.StudentGrantDetail, error) {
	return f.studentGrants, nil
}

func (f *fakeAccessRepo) CreateStudentGrant(_ context.Context, grant *models.StudentGrant) error {
	if f.createErr != nil {
		return f.createErr
	}
	grant.ID = 99
	f.createdStud = grant
	return nil
}

func (f *fakeAccessRepo) DeleteStudentGrant(context.Context, int64) (bool, error) {
	return f.deleteFound, nil
}

type fakeUserLookup struct {
	missing map[int64]bool
}

func (f *fakeUserLookup) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if !f.missing[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeSportLookup struct{}

func (fakeSportLookup) FindByID(_ context.Context, id int64) (*models.Sport, error) {
	if id == 404 {
		return nil, sql.ErrNoRows
	}
	return &models.Sport{ID: id, Code: "WBK", Name: "Women's Basketball"}, nil
}

type fakeMemberships struct {
	member map[int64][]string
	err    error
	calls  int
}

func (f *fakeMemberships) InSports(_ context.Context, studentID int64, codes []string, _ time.Time) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	for _, have := range f.member[studentID] {
		for _, code := range codes {
			if have == code {
				return true, nil
			}
		}
	}
	return false, nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func sportGrant(code string) models.AccessGrantDetail {
	id := int64(len(code))
	return models.AccessGrantDetail{AccessGrant: models.AccessGrant{UserID: 7, SportID: &id}, SportCode: strPtr(code), SportName: strPtr(code)}
}

func newTestAccessService(repo *fakeAccessRepo, memberships *fakeMemberships) *AccessService {
	if memberships == nil {
		memberships = &fakeMemberships{}
	}
	return NewAccessService(repo, &fakeUserLookup{}, fakeSportLookup{}, memberships, nil, nil)
}

func TestAccessServiceResolveAdminSkipsStorage(t *testing.T) {
	repo := &fakeAccessRepo{}
	svc := newTestAccessService(repo, nil)

	policy, err := svc.Resolve(context.Background(), models.Requester{UserID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, policy.AllSports)
	assert.Zero(t, repo.listCalls)
}

func TestAccessServiceResolveUnionOfGrants(t *testing.T) {
	repo := &fakeAccessRepo{
		grants:     []models.AccessGrantDetail{sportGrant("WBK"), sportGrant("MFB"), sportGrant("WBK")},
		studentIDs: []int64{55, 21, 55},
	}
	svc := newTestAccessService(repo, nil)

	policy, err := svc.Resolve(context.Background(), models.Requester{UserID: 7, Role: models.RoleMentor})
	require.NoError(t, err)
	assert.False(t, policy.AllSports)
	assert.Equal(t, []string{"MFB", "WBK"}, policy.SportCodes)
	assert.Equal(t, []int64{21, 55}, policy.StudentIDs)
}

func TestAccessServiceResolveAllSportsSentinel(t *testing.T) {
	zero := int64(0)
	repo := &fakeAccessRepo{grants: []models.AccessGrantDetail{
		sportGrant("WBK"),
		{AccessGrant: models.AccessGrant{UserID: 7, SportID: &zero}},
	}}
	svc := newTestAccessService(repo, nil)

	policy, err := svc.Resolve(context.Background(), models.Requester{UserID: 7, Role: models.RoleMentor})
	require.NoError(t, err)
	assert.True(t, policy.AllSports)
}

func TestAccessServiceResolveNoGrantsIsEmpty(t *testing.T) {
	svc := newTestAccessService(&fakeAccessRepo{}, nil)
	policy, err := svc.Resolve(context.Background(), models.Requester{UserID: 7, Role: models.RoleMentor})
	require.NoError(t, err)
	assert.True(t, policy.Empty())
}

func TestAccessServiceResolveStorageError(t *testing.T) {
	svc := newTestAccessService(&fakeAccessRepo{grantsErr: errors.New("db down")}, nil)
	_, err := svc.Resolve(context.Background(), models.Requester{UserID: 7, Role: models.RoleMentor})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAccessServiceCanViewStudent(t *testing.T) {
	memberships := &fakeMemberships{member: map[int64][]string{11: {"WBK"}, 12: {"MFB"}}}
	svc := newTestAccessService(&fakeAccessRepo{}, memberships)
	ctx := context.Background()

	policy := &models.AccessPolicy{SportCodes: []string{"WBK"}, StudentIDs: []int64{30}}
	ok, err := svc.CanViewStudent(ctx, policy, 11)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanViewStudent(ctx, policy, 12)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanViewStudent(ctx, policy, 30)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, memberships.calls)

	ok, err = svc.CanViewStudent(ctx, models.NewAccessPolicy(), 11)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanViewStudent(ctx, &models.AccessPolicy{AllSports: true}, 999)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccessServiceListGrantsGroupsBySport(t *testing.T) {
	repo := &fakeAccessRepo{grants: []models.AccessGrantDetail{
		{AccessGrant: models.AccessGrant{ID: 1, UserID: 3}},
		sportGrant("MFB"),
		sportGrant("MFB"),
		sportGrant("WBK"),
	}}
	svc := newTestAccessService(repo, nil)

	groups, err := svc.ListGrants(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, models.AllSportsLabel, groups[0].Sport)
	assert.Equal(t, "MFB", groups[1].Sport)
	assert.Len(t, groups[1].Grants, 2)
}

func TestAccessServiceListGrantsSeparatesDeletedSport(t *testing.T) {
	repo := &fakeAccessRepo{grants: []models.AccessGrantDetail{
		{AccessGrant: models.AccessGrant{ID: 1, UserID: 3}},
		{AccessGrant: models.AccessGrant{ID: 2, UserID: 4, SportID: int64Ptr(42)}},
	}}
	svc := newTestAccessService(repo, nil)

	groups, err := svc.ListGrants(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, models.AllSportsLabel, groups[0].Sport)
	assert.Equal(t, "Unknown sport (#42)", groups[1].Sport)
	assert.Equal(t, int64(4), groups[1].Grants[0].UserID)
}

func TestAccessServiceCreateGrants(t *testing.T) {
	repo := &fakeAccessRepo{}
	svc := newTestAccessService(repo, nil)
	actor := models.Requester{UserID: 1, Role: models.RoleAdmin}

	created, err := svc.CreateGrants(context.Background(), actor, dto.CreateAccessGrantRequest{UserIDs: []int64{7, 8, 7}, SportID: int64Ptr(3)})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(3), *created[0].SportID)
	assert.Equal(t, int64(1), created[0].CreatedBy)

	created, err = svc.CreateGrants(context.Background(), actor, dto.CreateAccessGrantRequest{UserIDs: []int64{7}, SportID: int64Ptr(0)})
	require.NoError(t, err)
	assert.Nil(t, created[0].SportID)
	assert.True(t, created[0].AllSports())
}

func TestAccessServiceCreateGrantsValidation(t *testing.T) {
	svc := NewAccessService(&fakeAccessRepo{}, &fakeUserLookup{missing: map[int64]bool{9: true}}, fakeSportLookup{}, &fakeMemberships{}, nil, nil)
	actor := models.Requester{UserID: 1, Role: models.RoleAdmin}
	ctx := context.Background()

	_, err := svc.CreateGrants(ctx, actor, dto.CreateAccessGrantRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateGrants(ctx, actor, dto.CreateAccessGrantRequest{UserIDs: []int64{9}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateGrants(ctx, actor, dto.CreateAccessGrantRequest{UserIDs: []int64{7}, SportID: int64Ptr(404)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAccessServiceDeleteGrantNotFound(t *testing.T) {
	svc := newTestAccessService(&fakeAccessRepo{deleteFound: false}, nil)
	err := svc.DeleteGrant(context.Background(), models.Requester{UserID: 1}, 5)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	svc = newTestAccessService(&fakeAccessRepo{deleteFound: true}, nil)
	assert.NoError(t, svc.DeleteStudentGrant(context.Background(), models.Requester{UserID: 1}, 5))
}

func TestAccessServiceCreateStudentGrant(t *testing.T) {
	repo := &fakeAccessRepo{}
	svc := newTestAccessService(repo, nil)
	actor := models.Requester{UserID: 1, Role: models.RoleAdmin}

	grant, err := svc.CreateStudentGrant(context.Background(), actor, dto.CreateStudentGrantRequest{UserID: 7, StudentID: 55})
	require.NoError(t, err)
	assert.Equal(t, int64(99), grant.ID)
	assert.Equal(t, int64(55), repo.createdStud.StudentID)

	repo.createErr = repository.ErrDuplicateGrant
	_, err = svc.CreateStudentGrant(context.Background(), actor, dto.CreateStudentGrantRequest{UserID: 7, StudentID: 55})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}
