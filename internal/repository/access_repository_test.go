package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/internal/models"
)

var grantColumns = []string{"id", "user_id", "sport_id", "time_created", "time_modified", "created_by", "modified_by", "username", "firstname", "lastname", "sport_code", "sport_name"}

func TestAccessRepositoryListGrantsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(grantColumns).
		AddRow(1, 7, nil, now, now, 2, 2, "coach", "Pat", "Lee", nil, nil).
		AddRow(2, 7, 3, now, now, 2, 2, "coach", "Pat", "Lee", "WBK", "Women's Basketball")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN sports s ON s.id = a.sport_id WHERE a.user_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	grants, err := repo.ListGrantsByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.True(t, grants[0].AllSports())
	assert.Equal(t, models.AllSportsLabel, grants[0].SportLabel())
	require.NotNil(t, grants[1].SportCode)
	assert.Equal(t, "WBK", *grants[1].SportCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryListGrantsOrdersAllSportsFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.name ASC NULLS FIRST")).
		WillReturnRows(sqlmock.NewRows(grantColumns))

	grants, err := repo.ListGrants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, grants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryCreateGrants(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)
	sport := int64(3)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sportsgrades_access")).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sportsgrades_access")).
		WithArgs(int64(8), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	grants := []*models.AccessGrant{
		{UserID: 7, SportID: &sport, CreatedBy: 1, ModifiedBy: 1},
		{UserID: 8, SportID: &sport, CreatedBy: 1, ModifiedBy: 1},
	}
	require.NoError(t, repo.CreateGrants(context.Background(), grants))
	assert.Equal(t, int64(10), grants[0].ID)
	assert.Equal(t, int64(11), grants[1].ID)
	assert.False(t, grants[0].TimeCreated.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryCreateGrantsRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sportsgrades_access")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateGrants(context.Background(), []*models.AccessGrant{{UserID: 7}})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryDeleteGrant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sportsgrades_access WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.DeleteGrant(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryStudentGrants(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM sportsgrades_student_access WHERE user_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(21).AddRow(34))
	ids, err := repo.ListStudentIDsByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{21, 34}, ids)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, student_id) DO NOTHING")).
		WithArgs(int64(7), int64(21), sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	err = repo.CreateStudentGrant(context.Background(), &models.StudentGrant{UserID: 7, StudentID: 21, CreatedBy: 1})
	assert.ErrorIs(t, err, ErrDuplicateGrant)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, student_id) DO NOTHING")).
		WithArgs(int64(7), int64(55), sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	grant := &models.StudentGrant{UserID: 7, StudentID: 55, CreatedBy: 1}
	require.NoError(t, repo.CreateStudentGrant(context.Background(), grant))
	assert.Equal(t, int64(9), grant.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sportsgrades_student_access WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	found, err := repo.DeleteStudentGrant(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
