// Package models defines server-side records persisted in the database.
package models

import "time"

// User is a registered account. PasswordHash holds a bcrypt hash and must
// never leave the service layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
