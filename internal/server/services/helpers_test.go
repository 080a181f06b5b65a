package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/archive"
	"github.com/dmitrijs2005/nutritracker/internal/server/auth"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/nutrients"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repotest"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 24 * time.Hour,
		PasswordHashCost:             bcrypt.MinCost,
	}
}

func newUserService(t *testing.T, db *sql.DB, rm *repotest.Manager, opts ...auth.Option) *UserService {
	t.Helper()
	cfg := testConfig()
	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration, opts...)
	return NewUserService(db, rm, issuer, cfg)
}

type fakeLookup struct {
	result *nutrients.Result
	err    error
	calls  int
}

func (f *fakeLookup) SearchAndNormalize(ctx context.Context, query string, exactMatch bool, preferredCategory string) (*nutrients.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordingArchiver struct {
	foods    []*models.FoodEntry
	trackers []*models.DailyTracker
	err      error
}

func (a *recordingArchiver) ArchiveFood(ctx context.Context, food *models.FoodEntry) error {
	a.foods = append(a.foods, food)
	return a.err
}

func (a *recordingArchiver) ArchiveTracker(ctx context.Context, tracker *models.DailyTracker) error {
	a.trackers = append(a.trackers, tracker)
	return a.err
}

var _ archive.Archiver = (*recordingArchiver)(nil)

func newTrackerService(db *sql.DB, rm *repotest.Manager, a archive.Archiver, now func() time.Time) *TrackerService {
	return NewTrackerService(db, rm, a, logging.Nop{}, WithTrackerClock(now))
}

func mustRegister(t *testing.T, s *UserService, name, password string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{UserName: name, Password: password})
	if err != nil {
		t.Fatalf("Register(%s) error: %v", name, err)
	}
	return u
}
