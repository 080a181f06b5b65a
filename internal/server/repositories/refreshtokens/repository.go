// Package refreshtokens declares the server-side repository contract for
// managing issued refresh tokens in persistent storage.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

// Repository tracks refresh tokens by JTI so they can be rotated and revoked.
type Repository interface {
	// Create stores an issued refresh token.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Consume deletes the token with the given JTI and returns it. A token
	// that was never stored or has already been consumed yields
	// common.ErrorNotFound.
	Consume(ctx context.Context, id string) (*models.RefreshToken, error)

	// Delete removes a token by JTI. Deleting a non-existent token is not an
	// error.
	Delete(ctx context.Context, id string) error
}
