// Package repotest provides an in-memory repomanager.RepositoryManager for
// tests of the layers above the database. Transactions are not simulated:
// writes made inside a rolled-back transaction stay visible.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/common"
	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/foods"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/trackers"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/users"
	"github.com/google/uuid"
)

type trackerKey struct {
	userID string
	day    string
}

type entryKey struct {
	userID string
	day    string
	foodID int64
}

// Manager keeps every table in maps guarded by one mutex. Setting Err makes
// every repository call fail with it.
type Manager struct {
	Err error

	mu            sync.Mutex
	users         map[string]*models.User
	foods         map[int64]*models.FoodEntry
	trackers      map[trackerKey]*models.DailyTracker
	entries       map[entryKey]struct{}
	refreshTokens map[string]*models.RefreshToken
	nextFoodID    int64
	nextTrackerID int64
}

func NewManager() *Manager {
	return &Manager{
		users:         map[string]*models.User{},
		foods:         map[int64]*models.FoodEntry{},
		trackers:      map[trackerKey]*models.DailyTracker{},
		entries:       map[entryKey]struct{}{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return m.Err }

func (m *Manager) Users(dbx.DBTX) users.Repository                 { return &userRepo{m} }
func (m *Manager) Foods(dbx.DBTX) foods.Repository                 { return &foodRepo{m} }
func (m *Manager) Trackers(dbx.DBTX) trackers.Repository           { return &trackerRepo{m} }
func (m *Manager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return &refreshTokenRepo{m} }

// UserCount returns the number of stored users.
func (m *Manager) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// TrackerCount returns the number of stored tracker rows.
func (m *Manager) TrackerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trackers)
}

// RefreshTokenCount returns the number of stored refresh tokens.
func (m *Manager) RefreshTokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refreshTokens)
}

type userRepo struct{ m *Manager }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	for _, u := range r.m.users {
		if u.UserName == user.UserName {
			return nil, common.ErrorConflict
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	r.m.users[user.ID] = &stored
	return user, nil
}

func (r *userRepo) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	for _, u := range r.m.users {
		if u.UserName == userName {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *userRepo) List(context.Context) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	out := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (r *userRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	u, ok := r.m.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for id, other := range r.m.users {
		if id != user.ID && other.UserName == user.UserName {
			return nil, common.ErrorConflict
		}
	}

	u.UserName = user.UserName
	u.Name = user.Name
	u.Weight = user.Weight
	u.Height = user.Height
	u.Age = user.Age
	u.FitnessGoal = user.FitnessGoal
	c := *u
	return &c, nil
}

func (r *userRepo) SetActive(_ context.Context, id string, active bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.IsActive = active
	c := *u
	return &c, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}

	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	for _, f := range r.m.foods {
		if f.UserID == id {
			return common.ErrorConflict
		}
	}
	for k := range r.m.trackers {
		if k.userID == id {
			return common.ErrorConflict
		}
	}
	delete(r.m.users, id)
	for k, t := range r.m.refreshTokens {
		if t.UserID == id {
			delete(r.m.refreshTokens, k)
		}
	}
	return nil
}

type foodRepo struct{ m *Manager }

func (r *foodRepo) Create(_ context.Context, food *models.FoodEntry) (*models.FoodEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	if _, ok := r.m.users[food.UserID]; !ok {
		return nil, common.ErrorConflict
	}
	r.m.nextFoodID++
	food.ID = r.m.nextFoodID
	food.CreatedAt = time.Now().UTC()
	stored := *food
	r.m.foods[food.ID] = &stored
	return food, nil
}

func (r *foodRepo) Get(_ context.Context, userID string, id int64) (*models.FoodEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	f, ok := r.m.foods[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *f
	return &c, nil
}

func (r *foodRepo) ExistsByName(_ context.Context, userID, name string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}

	for _, f := range r.m.foods {
		if f.UserID == userID && f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *foodRepo) List(_ context.Context, userID string) ([]*models.FoodEntry, error) {
	return r.filter(func(f *models.FoodEntry) bool { return f.UserID == userID })
}

func (r *foodRepo) ListForDay(_ context.Context, userID string, day time.Time) ([]*models.FoodEntry, error) {
	d := models.DayOf(day).Format(models.DateLayout)
	return r.filter(func(f *models.FoodEntry) bool {
		_, ok := r.m.entries[entryKey{userID: userID, day: d, foodID: f.ID}]
		return ok
	})
}

func (r *foodRepo) filter(keep func(*models.FoodEntry) bool) ([]*models.FoodEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	out := []*models.FoodEntry{}
	for _, f := range r.m.foods {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type trackerRepo struct{ m *Manager }

func (r *trackerRepo) AddEntry(_ context.Context, userID string, day time.Time, foodID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return false, r.m.Err
	}

	k := entryKey{userID: userID, day: models.DayOf(day).Format(models.DateLayout), foodID: foodID}
	if _, ok := r.m.entries[k]; ok {
		return false, nil
	}
	r.m.entries[k] = struct{}{}
	return true, nil
}

func (r *trackerRepo) Accumulate(_ context.Context, userID string, day time.Time, n models.Nutrients) (*models.DailyTracker, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	d := models.DayOf(day)
	k := trackerKey{userID: userID, day: d.Format(models.DateLayout)}
	t, ok := r.m.trackers[k]
	if !ok {
		r.m.nextTrackerID++
		t = &models.DailyTracker{ID: r.m.nextTrackerID, UserID: userID, Date: d}
		r.m.trackers[k] = t
	}
	t.Calories += n.Calories
	t.Carbs += n.Carbs
	t.Fats += n.Fats
	t.Proteins += n.Proteins
	c := *t
	return &c, nil
}

func (r *trackerRepo) Get(_ context.Context, userID string, day time.Time) (*models.DailyTracker, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	t, ok := r.m.trackers[trackerKey{userID: userID, day: models.DayOf(day).Format(models.DateLayout)}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

type refreshTokenRepo struct{ m *Manager }

func (r *refreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}

	stored := *token
	stored.CreatedAt = time.Now().UTC()
	r.m.refreshTokens[token.ID] = &stored
	return nil
}

func (r *refreshTokenRepo) Consume(_ context.Context, id string) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}

	t, ok := r.m.refreshTokens[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.m.refreshTokens, id)
	return t, nil
}

func (r *refreshTokenRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}

	delete(r.m.refreshTokens, id)
	return nil
}
