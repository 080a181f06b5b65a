package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/logging"
	"github.com/dmitrijs2005/nutritracker/internal/server/archive"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/nutrients"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repomanager"
)

// NutrientLookup resolves a food name to normalized nutrient data.
type NutrientLookup interface {
	SearchAndNormalize(ctx context.Context, query string, exactMatch bool, preferredCategory string) (*nutrients.Result, error)
}

// SearchInput describes a food to look up in the nutrient database.
type SearchInput struct {
	Name       string
	ExactMatch bool
	DataType   string
}

// FoodInput describes a manually entered food.
type FoodInput struct {
	Name      string
	Nutrients models.Nutrients
}

type FoodService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	lookup      NutrientLookup
	trackers    *TrackerService
	archiver    archive.Archiver
	logger      logging.Logger
}

func NewFoodService(db *sql.DB, m repomanager.RepositoryManager, lookup NutrientLookup, trackers *TrackerService, archiver archive.Archiver, logger logging.Logger) *FoodService {
	return &FoodService{
		db:          db,
		repomanager: m,
		lookup:      lookup,
		trackers:    trackers,
		archiver:    archiver,
		logger:      logger.With("module", "foods"),
	}
}

// SearchAndAdd looks the food up, stores it and adds it to today's tracker
// in one transaction. The stored name is the upstream description, falling
// back to the query.
func (s *FoodService) SearchAndAdd(ctx context.Context, userID string, in SearchInput) (*models.FoodEntry, *models.DailyTracker, error) {
	query := strings.TrimSpace(in.Name)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: food name is required", common.ErrorValidation)
	}

	res, err := s.lookup.SearchAndNormalize(ctx, query, in.ExactMatch, in.DataType)
	if err != nil {
		return nil, nil, err
	}

	name := strings.TrimSpace(res.Description)
	if name == "" {
		name = query
	}

	food := &models.FoodEntry{UserID: userID, Name: name, Nutrients: res.Nutrients}
	var tracker *models.DailyTracker

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		food, err = s.repomanager.Foods(tx).Create(ctx, food)
		if err != nil {
			return fmt.Errorf("error creating food: %w", err)
		}

		tracker, err = s.trackers.attribute(ctx, tx, userID, food, s.trackers.today())
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "food added", "user_id", userID, "food_id", food.ID, "category", res.Category)

	s.archiveFood(ctx, food)
	s.trackers.archiveTracker(ctx, tracker)

	return food, tracker, nil
}

// Add stores a manually entered food without attributing it to a tracker.
func (s *FoodService) Add(ctx context.Context, userID string, in FoodInput) (*models.FoodEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: food name is required", common.ErrorValidation)
	}
	n := in.Nutrients
	if n.Calories < 0 || n.Carbs < 0 || n.Fats < 0 || n.Proteins < 0 || n.VitaminC < 0 || n.Calcium < 0 {
		return nil, fmt.Errorf("%w: nutrient values must not be negative", common.ErrorValidation)
	}

	repo := s.repomanager.Foods(s.db)

	exists, err := repo.ExistsByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: food %q already exists", common.ErrorConflict, name)
	}

	food, err := repo.Create(ctx, &models.FoodEntry{UserID: userID, Name: name, Nutrients: n})
	if err != nil {
		return nil, fmt.Errorf("error creating food: %w", err)
	}

	s.archiveFood(ctx, food)
	return food, nil
}

func (s *FoodService) List(ctx context.Context, userID string) ([]*models.FoodEntry, error) {
	return s.repomanager.Foods(s.db).List(ctx, userID)
}

func (s *FoodService) Get(ctx context.Context, userID string, id int64) (*models.FoodEntry, error) {
	return s.repomanager.Foods(s.db).Get(ctx, userID, id)
}

// ListForDay returns the foods counted in the user's tracker on day.
func (s *FoodService) ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.FoodEntry, error) {
	return s.repomanager.Foods(s.db).ListForDay(ctx, userID, day)
}

// ListToday is ListForDay for the tracker's current day.
func (s *FoodService) ListToday(ctx context.Context, userID string) ([]*models.FoodEntry, error) {
	return s.ListForDay(ctx, userID, s.trackers.today())
}

func (s *FoodService) archiveFood(ctx context.Context, food *models.FoodEntry) {
	if err := s.archiver.ArchiveFood(ctx, food); err != nil {
		s.logger.Warn(ctx, "food snapshot not archived", "user_id", food.UserID, "food_id", food.ID, "error", err)
	}
}
