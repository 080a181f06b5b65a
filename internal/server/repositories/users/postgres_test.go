package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "name", "weight", "height", "age", "fitness_goal", "is_active", "scope", "created_at"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO users (username, password_hash, name, weight, height, age, fitness_goal, is_active, scope)`) + `.*RETURNING id, created_at`

	mock.ExpectQuery(q).
		WithArgs("alice", "hash", "Alice", 60.5, 170.0, 30, "cut", true, "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", createdAt))

	u := &models.User{UserName: "alice", PasswordHash: "hash", Name: "Alice", Weight: 60.5, Height: 170,
		Age: 30, FitnessGoal: "cut", IsActive: true, Scope: "user"}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, createdAt, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUserName_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, .* FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(userRows().AddRow("u-1", "alice", "hash", "Alice", 60.5, 170.0, 30, "cut", true, "user", createdAt))

	got, err := repo.GetByUserName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u-1", UserName: "alice", PasswordHash: "hash", Name: "Alice",
		Weight: 60.5, Height: 170, Age: 30, FitnessGoal: "cut", IsActive: true, Scope: "user", CreatedAt: createdAt}, got)
}

func TestGetByUserName_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserName(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u-9").
		WillReturnRows(userRows())

	_, err := repo.GetByID(context.Background(), "u-9")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users ORDER BY created_at, username`).
		WillReturnRows(userRows().
			AddRow("u-1", "alice", "h1", "", 0.0, 0.0, 0, "", true, "user", createdAt).
			AddRow("u-2", "root", "h2", "", 0.0, 0.0, 0, "", true, "admin", createdAt))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].UserName)
	assert.Equal(t, "admin", got[1].Scope)
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users`).WillReturnRows(userRows())

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE users SET username = \$2, name = \$3.* WHERE id = \$1 RETURNING id`).
		WithArgs("u-1", "alice2", "Alice", 61.0, 170.0, 31, "bulk").
		WillReturnRows(userRows().AddRow("u-1", "alice2", "hash", "Alice", 61.0, 170.0, 31, "bulk", true, "user", createdAt))

	got, err := repo.Update(context.Background(), &models.User{ID: "u-1", UserName: "alice2", Name: "Alice",
		Weight: 61, Height: 170, Age: 31, FitnessGoal: "bulk"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.UserName)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestUpdate_UsernameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Update(context.Background(), &models.User{ID: "u-1", UserName: "bob"})
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestSetActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE users SET is_active = \$2 WHERE id = \$1`).
		WithArgs("u-1", false).
		WillReturnRows(userRows().AddRow("u-1", "alice", "hash", "", 0.0, 0.0, 0, "", false, "user", createdAt))

	got, err := repo.SetActive(context.Background(), "u-1", false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		dbErr   error
		wantErr error
	}{
		{name: "deleted", result: sqlmock.NewResult(0, 1)},
		{name: "missing", result: sqlmock.NewResult(0, 0), wantErr: common.ErrorNotFound},
		{name: "referenced", dbErr: &pgconn.PgError{Code: "23503"}, wantErr: common.ErrorConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("u-1")
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Delete(context.Background(), "u-1")
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
