package models

import "time"

// RefreshToken records an issued refresh token by its JTI. The token string
// itself is never stored.
type RefreshToken struct {
	ID        string
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}
