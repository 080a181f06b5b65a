// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account together with its fitness profile.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	Name         string
	Weight       float64
	Height       float64
	Age          int
	FitnessGoal  string
	IsActive     bool
	Scope        string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the administrator scope.
func (u *User) IsAdmin() bool {
	return u.Scope == "admin"
}

// UserUpdate is a partial profile change; nil fields are left untouched.
type UserUpdate struct {
	UserName    *string
	Name        *string
	Weight      *float64
	Height      *float64
	Age         *int
	FitnessGoal *string
}
