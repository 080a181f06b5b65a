// Package foods declares the repository contract for food entries.
package foods

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, food *models.FoodEntry) (*models.FoodEntry, error)
	// Get returns the food with id owned by userID, or common.ErrorNotFound.
	Get(ctx context.Context, userID string, id int64) (*models.FoodEntry, error)
	ExistsByName(ctx context.Context, userID, name string) (bool, error)
	List(ctx context.Context, userID string) ([]*models.FoodEntry, error)
	// ListForDay returns the foods attributed to the user's tracker on day.
	ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.FoodEntry, error)
}
