package trackers

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

const trackerColumns = `id, user_id, date, calories, carbs, fats, proteins`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTracker(row *sql.Row) (*models.DailyTracker, error) {
	t := &models.DailyTracker{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Date, &t.Calories, &t.Carbs, &t.Fats, &t.Proteins); err != nil {
		return nil, err
	}
	t.Date = models.DayOf(t.Date)
	return t, nil
}

func (r *PostgresRepository) AddEntry(ctx context.Context, userID string, day time.Time, foodID int64) (bool, error) {
	query :=
		`INSERT INTO tracker_entries (user_id, date, food_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, userID, models.DayOf(day), foodID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) Accumulate(ctx context.Context, userID string, day time.Time, n models.Nutrients) (*models.DailyTracker, error) {
	query :=
		`INSERT INTO tracker (user_id, date, calories, carbs, fats, proteins)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		     calories = tracker.calories + EXCLUDED.calories,
		     carbs = tracker.carbs + EXCLUDED.carbs,
		     fats = tracker.fats + EXCLUDED.fats,
		     proteins = tracker.proteins + EXCLUDED.proteins
		 RETURNING ` + trackerColumns

	t, err := scanTracker(r.db.QueryRowContext(ctx, query, userID, models.DayOf(day),
		n.Calories, n.Carbs, n.Fats, n.Proteins))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, day time.Time) (*models.DailyTracker, error) {
	query := `SELECT ` + trackerColumns + ` FROM tracker WHERE user_id = $1 AND date = $2`

	t, err := scanTracker(r.db.QueryRowContext(ctx, query, userID, models.DayOf(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}
