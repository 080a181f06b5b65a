package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFood(t *testing.T, rm *repotest.Manager, userID, name string, calories float64) *models.FoodEntry {
	t.Helper()
	f, err := rm.Foods(nil).Create(context.Background(), &models.FoodEntry{UserID: userID, Name: name, Nutrients: models.Nutrients{Calories: calories}})
	require.NoError(t, err)
	return f
}

func seedUser(t *testing.T, rm *repotest.Manager, name string) *models.User {
	t.Helper()
	u, err := rm.Users(nil).Create(context.Background(), &models.User{UserName: name, IsActive: true, Scope: common.ScopeUser})
	require.NoError(t, err)
	return u
}

func TestAttributeFood_SumsSameDaySeparatesDays(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := repotest.NewManager()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &recordingArchiver{}
	s := newTrackerService(db, rm, a, func() time.Time { return now })
	ctx := context.Background()

	u := seedUser(t, rm, "alice")
	f1 := seedFood(t, rm, u.ID, "Milk", 60)
	f2 := seedFood(t, rm, u.ID, "Bread", 40)
	f3 := seedFood(t, rm, u.ID, "Apple", 52)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	_, err := s.AttributeFood(ctx, u.ID, f1.ID)
	require.NoError(t, err)
	tr, err := s.AttributeFood(ctx, u.ID, f2.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tr.Calories)

	now = now.Add(24 * time.Hour)
	tr, err = s.AttributeFood(ctx, u.ID, f3.ID)
	require.NoError(t, err)
	assert.Equal(t, 52.0, tr.Calories)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), tr.Date)

	assert.Equal(t, 2, rm.TrackerCount())
	assert.Len(t, a.trackers, 3)

	first, err := s.ForDay(ctx, u.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.Calories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttributeFood_Idempotent(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := repotest.NewManager()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTrackerService(db, rm, &recordingArchiver{}, func() time.Time { return now })

	u := seedUser(t, rm, "alice")
	f := seedFood(t, rm, u.ID, "Milk", 60)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := s.AttributeFood(context.Background(), u.ID, f.ID)
	require.NoError(t, err)
	tr, err := s.AttributeFood(context.Background(), u.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, tr.Calories)
}

func TestAttributeFood_OtherUsersFood(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := repotest.NewManager()
	s := newTrackerService(db, rm, &recordingArchiver{}, time.Now)

	alice := seedUser(t, rm, "alice")
	bob := seedUser(t, rm, "bob")
	f := seedFood(t, rm, alice.ID, "Milk", 60)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.AttributeFood(context.Background(), bob.ID, f.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, rm.TrackerCount())
}

func TestAttributeFood_ArchiveFailureIgnored(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := repotest.NewManager()
	s := newTrackerService(db, rm, &recordingArchiver{err: errBoom{}}, time.Now)

	u := seedUser(t, rm, "alice")
	f := seedFood(t, rm, u.ID, "Milk", 60)

	mock.ExpectBegin()
	mock.ExpectCommit()

	tr, err := s.AttributeFood(context.Background(), u.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, tr.Calories)
}

func TestToday_IsPureRead(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	s := newTrackerService(db, rm, &recordingArchiver{}, func() time.Time { return now })

	tr, err := s.Today(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Zero(t, tr.ID)
	assert.Equal(t, "u-1", tr.UserID)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), tr.Date)
	assert.Zero(t, tr.Calories)
	assert.Equal(t, 0, rm.TrackerCount())
}

func TestForDay_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	rm.Err = errBoom{}
	s := newTrackerService(db, rm, &recordingArchiver{}, time.Now)

	_, err := s.ForDay(context.Background(), "u-1", time.Now())
	require.ErrorIs(t, err, errBoom{})
}
