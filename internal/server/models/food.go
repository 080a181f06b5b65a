package models

import "time"

// Nutrients holds per-entry nutrient values. Calories are kcal, calcium mg,
// vitamin C mg, the rest grams.
type Nutrients struct {
	Calories float64
	Carbs    float64
	Fats     float64
	Proteins float64
	VitaminC float64
	Calcium  float64
}

// FoodEntry is one food recorded by a user.
type FoodEntry struct {
	ID        int64
	UserID    string
	Name      string
	Nutrients Nutrients
	CreatedAt time.Time
}
