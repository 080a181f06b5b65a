// Package archive writes JSON snapshots of food entries and daily trackers
// to S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

// Archiver stores snapshots. Implementations must be safe for concurrent use.
type Archiver interface {
	ArchiveFood(ctx context.Context, food *models.FoodEntry) error
	ArchiveTracker(ctx context.Context, tracker *models.DailyTracker) error
}

// NopArchiver discards snapshots.
type NopArchiver struct{}

func (NopArchiver) ArchiveFood(context.Context, *models.FoodEntry) error       { return nil }
func (NopArchiver) ArchiveTracker(context.Context, *models.DailyTracker) error { return nil }

// FoodKey is the object key of a food snapshot.
func FoodKey(food *models.FoodEntry) string {
	return fmt.Sprintf("foods/%s/%d.json", food.UserID, food.ID)
}

// TrackerKey is the object key of a tracker snapshot. A later snapshot of
// the same day overwrites the earlier one.
func TrackerKey(tracker *models.DailyTracker) string {
	return fmt.Sprintf("trackers/%s/%s.json", tracker.UserID, tracker.Date.Format(models.DateLayout))
}

type foodSnapshot struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Proteins  float64   `json:"proteins"`
	VitaminC  float64   `json:"vitamin_c"`
	Calcium   float64   `json:"calcium"`
	CreatedAt time.Time `json:"created_at"`
}

type trackerSnapshot struct {
	ID       int64   `json:"id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Proteins float64 `json:"proteins"`
}

func newFoodSnapshot(f *models.FoodEntry) foodSnapshot {
	return foodSnapshot{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Calories:  f.Nutrients.Calories,
		Carbs:     f.Nutrients.Carbs,
		Fats:      f.Nutrients.Fats,
		Proteins:  f.Nutrients.Proteins,
		VitaminC:  f.Nutrients.VitaminC,
		Calcium:   f.Nutrients.Calcium,
		CreatedAt: f.CreatedAt,
	}
}

func newTrackerSnapshot(t *models.DailyTracker) trackerSnapshot {
	return trackerSnapshot{
		ID:       t.ID,
		UserID:   t.UserID,
		Date:     t.Date.Format(models.DateLayout),
		Calories: t.Calories,
		Carbs:    t.Carbs,
		Fats:     t.Fats,
		Proteins: t.Proteins,
	}
}
