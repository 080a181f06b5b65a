package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/archive"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repomanager"
)

// TrackerService maintains one nutrient accumulator per user per UTC day.
type TrackerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archiver    archive.Archiver
	logger      logging.Logger
	now         func() time.Time
}

type TrackerOption func(*TrackerService)

// WithTrackerClock replaces time.Now when deciding what "today" is.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(s *TrackerService) {
		s.now = now
	}
}

func NewTrackerService(db *sql.DB, m repomanager.RepositoryManager, archiver archive.Archiver, logger logging.Logger, opts ...TrackerOption) *TrackerService {
	s := &TrackerService{
		db:          db,
		repomanager: m,
		archiver:    archiver,
		logger:      logger.With("module", "tracker"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TrackerService) today() time.Time {
	return models.DayOf(s.now())
}

// AttributeFood adds one of the user's foods to today's tracker. Adding the
// same food twice on the same day leaves the totals unchanged.
func (s *TrackerService) AttributeFood(ctx context.Context, userID string, foodID int64) (*models.DailyTracker, error) {
	var tracker *models.DailyTracker

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		food, err := s.repomanager.Foods(tx).Get(ctx, userID, foodID)
		if err != nil {
			return err
		}

		tracker, err = s.attribute(ctx, tx, userID, food, s.today())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.archiveTracker(ctx, tracker)
	return tracker, nil
}

// attribute records food against the user's tracker for day and folds its
// nutrients into the running totals, all on tx. The tracker_entries insert
// is the idempotency key: when it was already there the current row is
// returned unchanged.
func (s *TrackerService) attribute(ctx context.Context, tx dbx.DBTX, userID string, food *models.FoodEntry, day time.Time) (*models.DailyTracker, error) {
	repo := s.repomanager.Trackers(tx)

	added, err := repo.AddEntry(ctx, userID, day, food.ID)
	if err != nil {
		return nil, fmt.Errorf("error adding tracker entry: %w", err)
	}

	if !added {
		tracker, err := repo.Get(ctx, userID, day)
		if err != nil {
			return nil, fmt.Errorf("error loading tracker: %w", err)
		}
		return tracker, nil
	}

	tracker, err := repo.Accumulate(ctx, userID, day, food.Nutrients)
	if err != nil {
		return nil, fmt.Errorf("error updating tracker: %w", err)
	}
	return tracker, nil
}

// Today returns today's tracker. A day with no foods yields an unsaved
// zero tracker; nothing is written.
func (s *TrackerService) Today(ctx context.Context, userID string) (*models.DailyTracker, error) {
	return s.ForDay(ctx, userID, s.now())
}

func (s *TrackerService) ForDay(ctx context.Context, userID string, day time.Time) (*models.DailyTracker, error) {
	day = models.DayOf(day)

	tracker, err := s.repomanager.Trackers(s.db).Get(ctx, userID, day)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.DailyTracker{UserID: userID, Date: day}, nil
		}
		return nil, err
	}
	return tracker, nil
}

func (s *TrackerService) archiveTracker(ctx context.Context, tracker *models.DailyTracker) {
	if err := s.archiver.ArchiveTracker(ctx, tracker); err != nil {
		s.logger.Warn(ctx, "tracker snapshot not archived", "user_id", tracker.UserID, "date", tracker.Date.Format(models.DateLayout), "error", err)
	}
}
