package foods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
)

const foodColumns = `f.id, f.user_id, f.name, f.calories, f.carbs, f.fats, f.proteins, f.vitamin_c, f.calcium, f.created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFood(s scanner) (*models.FoodEntry, error) {
	f := &models.FoodEntry{}
	n := &f.Nutrients
	if err := s.Scan(&f.ID, &f.UserID, &f.Name, &n.Calories, &n.Carbs, &n.Fats, &n.Proteins,
		&n.VitaminC, &n.Calcium, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, food *models.FoodEntry) (*models.FoodEntry, error) {
	query :=
		`INSERT INTO foods (user_id, name, calories, carbs, fats, proteins, vitamin_c, calcium)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`

	n := food.Nutrients
	err := r.db.QueryRowContext(ctx, query, food.UserID, food.Name,
		n.Calories, n.Carbs, n.Fats, n.Proteins, n.VitaminC, n.Calcium).Scan(&food.ID, &food.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorConflict, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return food, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, id int64) (*models.FoodEntry, error) {
	query := `SELECT ` + foodColumns + ` FROM foods f WHERE f.id = $1 AND f.user_id = $2`

	food, err := scanFood(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return food, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM foods WHERE user_id = $1 AND name = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.FoodEntry, error) {
	query := `SELECT ` + foodColumns + ` FROM foods f WHERE f.user_id = $1 ORDER BY f.id`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListForDay(ctx context.Context, userID string, day time.Time) ([]*models.FoodEntry, error) {
	query :=
		`SELECT ` + foodColumns + ` FROM foods f
		 JOIN tracker_entries te ON te.food_id = f.id
		 WHERE te.user_id = $1 AND te.date = $2
		 ORDER BY f.id`
	return r.list(ctx, query, userID, models.DayOf(day))
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.FoodEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.FoodEntry{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
