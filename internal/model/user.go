// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username and email are both unique (exact-match, case-sensitive) and either
// can collide on registration. The password is never stored; only the bcrypt
// hash, which is excluded from JSON so it can never leak into a response body.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
