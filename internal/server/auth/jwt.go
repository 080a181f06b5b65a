// Package auth issues and verifies the server's JWTs and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload: the standard registered claims (sub is the
// username, jti a random UUID) plus the user's id, scope and the token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Scope  string    `json:"scope"`
	Kind   TokenKind `json:"typ"`
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secretKey       []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	now             func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(secretKey []byte, accessValidity, refreshValidity time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		secretKey:       secretKey,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AccessValidity returns the configured access token lifetime.
func (i *Issuer) AccessValidity() time.Duration {
	return i.accessValidity
}

func (i *Issuer) sign(userID, subject, scope string, kind TokenKind, validity time.Duration) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
		Scope:  scope,
		Kind:   kind,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, claims, nil
}

// IssueAccessToken returns a signed access token for the user.
func (i *Issuer) IssueAccessToken(userID, username, scope string) (string, error) {
	token, _, err := i.sign(userID, username, scope, KindAccess, i.accessValidity)
	return token, err
}

// IssueRefreshToken returns a signed refresh token together with its JTI and
// expiry so the caller can persist them for rotation and revocation.
func (i *Issuer) IssueRefreshToken(userID, username, scope string) (string, string, time.Time, error) {
	token, claims, err := i.sign(userID, username, scope, KindRefresh, i.refreshValidity)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, claims.ID, claims.ExpiresAt.Time, nil
}

// Verify parses tokenString and checks signature, algorithm, expiry and kind.
// Expired tokens yield common.ErrTokenExpired, everything else that fails
// yields common.ErrInvalidToken.
func (i *Issuer) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Kind != kind || claims.Subject == "" || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
