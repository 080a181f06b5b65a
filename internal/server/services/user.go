// Package services holds the server's business logic: accounts and tokens,
// food entries and daily tracker aggregation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/server/auth"
	"github.com/dmitrijs2005/nutritracker/internal/server/config"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// RegisterInput carries a new account. An empty Scope means common.ScopeUser.
type RegisterInput struct {
	UserName    string
	Password    string
	Name        string
	Weight      float64
	Height      float64
	Age         int
	FitnessGoal string
	Scope       string
}

type UserService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	issuer           *auth.Issuer
	passwordHashCost int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, cfg *config.Config) *UserService {
	return &UserService{
		db:               db,
		repomanager:      m,
		issuer:           issuer,
		passwordHashCost: cfg.PasswordHashCost,
	}
}

func validateProfile(weight, height float64, age int) error {
	if weight < 0 || height < 0 || age < 0 {
		return fmt.Errorf("%w: weight, height and age must not be negative", common.ErrorValidation)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	userName := strings.TrimSpace(in.UserName)
	if userName == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}
	if err := validateProfile(in.Weight, in.Height, in.Age); err != nil {
		return nil, err
	}

	scope := in.Scope
	switch scope {
	case "":
		scope = common.ScopeUser
	case common.ScopeUser, common.ScopeAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", common.ErrorValidation, in.Scope)
	}

	hash, err := auth.HashPassword(in.Password, s.passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		UserName:     userName,
		PasswordHash: hash,
		Name:         in.Name,
		Weight:       in.Weight,
		Height:       in.Height,
		Age:          in.Age,
		FitnessGoal:  in.FitnessGoal,
		IsActive:     true,
		Scope:        scope,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords both
// yield common.ErrorUnauthorized after one bcrypt comparison.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckDummyPassword(password, s.passwordHashCost)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Login authenticates and issues a token pair. Inactive users are refused
// with the same error as bad credentials.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, userName, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, s.db, user)
}

// Refresh rotates a refresh token: the presented one is consumed and a new
// pair is issued in the same transaction. Reusing a consumed token fails
// with common.ErrInvalidToken.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stored, err := s.repomanager.RefreshTokens(tx).Consume(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		if user.ID != claims.UserID || user.UserName != claims.Subject {
			return common.ErrInvalidToken
		}
		if !user.IsActive {
			return common.ErrorUnauthorized
		}

		pair, err = s.generateTokenPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout revokes a refresh token. Revoking an already revoked token is a
// no-op.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return err
	}

	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// CurrentUser resolves an access token to a fresh copy of its user. The
// token names the user by id; a token issued before a username change no
// longer matches and is rejected.
func (s *UserService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.issuer.Verify(accessToken, auth.KindAccess)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if user.UserName != claims.Subject {
		return nil, common.ErrInvalidToken
	}

	if !user.IsActive {
		return nil, common.ErrorInactiveUser
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Update applies the non-nil fields of upd to the user.
func (s *UserService) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.UserName != nil {
		name := strings.TrimSpace(*upd.UserName)
		if name == "" {
			return nil, fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
		}
		user.UserName = name
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Weight != nil {
		user.Weight = *upd.Weight
	}
	if upd.Height != nil {
		user.Height = *upd.Height
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.FitnessGoal != nil {
		user.FitnessGoal = *upd.FitnessGoal
	}
	if err := validateProfile(user.Weight, user.Height, user.Age); err != nil {
		return nil, err
	}

	return s.repomanager.Users(s.db).Update(ctx, user)
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).SetActive(ctx, id, active)
}

// Delete removes a user. Users that still own foods or trackers cannot be
// deleted and yield common.ErrorConflict.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(user.ID, user.UserName, user.Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	refreshToken, id, expires, err := s.issuer.IssueRefreshToken(user.ID, user.UserName, user.Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	err = s.repomanager.RefreshTokens(db).Create(ctx, &models.RefreshToken{ID: id, UserID: user.ID, Expires: expires})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresIn: s.issuer.AccessValidity()}, nil
}
