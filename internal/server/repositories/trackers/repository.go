// Package trackers declares the repository contract for per-day nutrient
// trackers and the food attributions feeding them.
package trackers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

type Repository interface {
	// AddEntry records that foodID counts towards the user's tracker on day.
	// It reports false when the attribution already existed.
	AddEntry(ctx context.Context, userID string, day time.Time, foodID int64) (bool, error)
	// Accumulate adds n to the user's tracker row for day, creating it when
	// missing, and returns the updated row.
	Accumulate(ctx context.Context, userID string, day time.Time, n models.Nutrients) (*models.DailyTracker, error)
	// Get returns the tracker row for day, or common.ErrorNotFound.
	Get(ctx context.Context, userID string, day time.Time) (*models.DailyTracker, error)
}
