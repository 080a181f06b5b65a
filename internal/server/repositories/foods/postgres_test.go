package foods

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

var createdAt = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func foodRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "calories", "carbs", "fats", "proteins", "vitamin_c", "calcium", "created_at"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO foods (user_id, name, calories, carbs, fats, proteins, vitamin_c, calcium)`) + `.*RETURNING id, created_at`
	mock.ExpectQuery(q).
		WithArgs("u-1", "Milk", 60.0, 4.8, 3.3, 3.2, 0.0, 113.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))

	f := &models.FoodEntry{UserID: "u-1", Name: "Milk", Nutrients: models.Nutrients{
		Calories: 60, Carbs: 4.8, Fats: 3.3, Proteins: 3.2, Calcium: 113}}
	got, err := repo.Create(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, createdAt, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO foods`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &models.FoodEntry{UserID: "ghost", Name: "Milk"})
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO foods`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.FoodEntry{UserID: "u-1", Name: "Milk"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods f WHERE f.id = \$1 AND f.user_id = \$2`).
		WithArgs(int64(7), "u-1").
		WillReturnRows(foodRows().AddRow(int64(7), "u-1", "Milk", 60.0, 4.8, 3.3, 3.2, 0.0, 113.0, createdAt))

	got, err := repo.Get(context.Background(), "u-1", 7)
	require.NoError(t, err)
	assert.Equal(t, &models.FoodEntry{ID: 7, UserID: "u-1", Name: "Milk", CreatedAt: createdAt,
		Nutrients: models.Nutrients{Calories: 60, Carbs: 4.8, Fats: 3.3, Proteins: 3.2, Calcium: 113}}, got)
}

func TestGet_OtherUsersFood(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods f WHERE`).
		WithArgs(int64(7), "u-2").
		WillReturnRows(foodRows())

	_, err := repo.Get(context.Background(), "u-2", 7)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestExistsByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM foods WHERE user_id = \$1 AND name = \$2\)`).
		WithArgs("u-1", "Milk").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByName(context.Background(), "u-1", "Milk")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods f WHERE f.user_id = \$1 ORDER BY f.id`).
		WithArgs("u-1").
		WillReturnRows(foodRows().
			AddRow(int64(1), "u-1", "Milk", 60.0, 0.0, 0.0, 3.2, 0.0, 0.0, createdAt).
			AddRow(int64(2), "u-1", "Bread", 40.0, 0.0, 0.0, 0.0, 0.0, 0.0, createdAt))

	got, err := repo.List(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bread", got[1].Name)
}

func TestListForDay(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`JOIN tracker_entries te ON te.food_id = f.id WHERE te.user_id = \$1 AND te.date = \$2`).
		WithArgs("u-1", day).
		WillReturnRows(foodRows().AddRow(int64(1), "u-1", "Milk", 60.0, 0.0, 0.0, 3.2, 0.0, 0.0, createdAt))

	got, err := repo.ListForDay(context.Background(), "u-1", day.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 60.0, got[0].Nutrients.Calories)
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "u-1")
	require.Error(t, err)
}
