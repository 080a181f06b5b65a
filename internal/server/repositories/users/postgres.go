package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

const userColumns = `id, username, password_hash, name, weight, height, age, fitness_goal, is_active, scope, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.Name, &u.Weight, &u.Height,
		&u.Age, &u.FitnessGoal, &u.IsActive, &u.Scope, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func wrap(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err), dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", common.ErrorConflict, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, password_hash, name, weight, height, age, fitness_goal, is_active, scope)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.PasswordHash, user.Name, user.Weight, user.Height,
		user.Age, user.FitnessGoal, user.IsActive, user.Scope).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userName))
	if err != nil {
		return nil, wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	result := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET username = $2, name = $3, weight = $4, height = $5, age = $6, fitness_goal = $7
		 WHERE id = $1
		 RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Name, user.Weight, user.Height, user.Age, user.FitnessGoal))
	if err != nil {
		return nil, wrap(err)
	}

	return updated, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	query := `UPDATE users SET is_active = $2 WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, active))
	if err != nil {
		return nil, wrap(err)
	}

	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
