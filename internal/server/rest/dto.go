package rest

import (
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/server/models"
	"github.com/dmitrijs2005/nutritracker/internal/server/services"
)

type registerRequest struct {
	UserName    string  `json:"username"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Height      float64 `json:"height"`
	Age         int     `json:"age"`
	FitnessGoal string  `json:"fitness_goal"`
}

func (r registerRequest) input(scope string) services.RegisterInput {
	return services.RegisterInput{
		UserName:    r.UserName,
		Password:    r.Password,
		Name:        r.Name,
		Weight:      r.Weight,
		Height:      r.Height,
		Age:         r.Age,
		FitnessGoal: r.FitnessGoal,
		Scope:       scope,
	}
}

// createUserRequest is the admin variant of registration.
type createUserRequest struct {
	registerRequest
	Scope string `json:"scope"`
}

type userUpdateRequest struct {
	UserName    *string  `json:"username"`
	Name        *string  `json:"name"`
	Weight      *float64 `json:"weight"`
	Height      *float64 `json:"height"`
	Age         *int     `json:"age"`
	FitnessGoal *string  `json:"fitness_goal"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type userResponse struct {
	ID          string    `json:"id"`
	UserName    string    `json:"username"`
	Name        string    `json:"name"`
	Weight      float64   `json:"weight"`
	Height      float64   `json:"height"`
	Age         int       `json:"age"`
	FitnessGoal string    `json:"fitness_goal"`
	IsActive    bool      `json:"is_active"`
	Scope       string    `json:"scope"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		UserName:    u.UserName,
		Name:        u.Name,
		Weight:      u.Weight,
		Height:      u.Height,
		Age:         u.Age,
		FitnessGoal: u.FitnessGoal,
		IsActive:    u.IsActive,
		Scope:       u.Scope,
		CreatedAt:   u.CreatedAt,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func toTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

type searchRequest struct {
	Name       string `json:"name"`
	ExactMatch bool   `json:"exact_match"`
	DataType   string `json:"data_type"`
}

type foodRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Proteins float64 `json:"proteins"`
	VitaminC float64 `json:"vitamin_c"`
	Calcium  float64 `json:"calcium"`
}

type foodResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Proteins  float64   `json:"proteins"`
	VitaminC  float64   `json:"vitamin_c"`
	Calcium   float64   `json:"calcium"`
	CreatedAt time.Time `json:"created_at"`
}

func toFoodResponse(f *models.FoodEntry) foodResponse {
	return foodResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Calories:  f.Nutrients.Calories,
		Carbs:     f.Nutrients.Carbs,
		Fats:      f.Nutrients.Fats,
		Proteins:  f.Nutrients.Proteins,
		VitaminC:  f.Nutrients.VitaminC,
		Calcium:   f.Nutrients.Calcium,
		CreatedAt: f.CreatedAt,
	}
}

func toFoodResponses(foods []*models.FoodEntry) []foodResponse {
	out := make([]foodResponse, 0, len(foods))
	for _, f := range foods {
		out = append(out, toFoodResponse(f))
	}
	return out
}

type trackerResponse struct {
	ID       int64   `json:"id,omitempty"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Proteins float64 `json:"proteins"`
}

func toTrackerResponse(t *models.DailyTracker) trackerResponse {
	return trackerResponse{
		ID:       t.ID,
		UserID:   t.UserID,
		Date:     t.Date.Format(models.DateLayout),
		Calories: t.Calories,
		Carbs:    t.Carbs,
		Fats:     t.Fats,
		Proteins: t.Proteins,
	}
}

type searchAndAddResponse struct {
	Food    foodResponse    `json:"food"`
	Tracker trackerResponse `json:"tracker"`
}
