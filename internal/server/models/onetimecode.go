package models

import "time"

// OneTimeCode is a password reset code issued to an email address. Several
// codes may be outstanding for the same email.
type OneTimeCode struct {
	ID        string
	Email     string
	Code      string
	CreatedAt time.Time
}
