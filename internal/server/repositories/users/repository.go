// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken username
	// yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// Update stores the profile fields and username of user.
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	// Delete removes the user. Users still referenced by foods or trackers
	// yield common.ErrorConflict.
	Delete(ctx context.Context, id string) error
}
