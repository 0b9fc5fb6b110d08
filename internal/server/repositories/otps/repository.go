// Package otps stores password reset codes. Codes are keyed by email and
// several may be outstanding for the same address.
package otps

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, email string, code string) (*models.OneTimeCode, error)
	// Find returns the newest record matching email and code exactly, or
	// common.ErrorNotFound.
	Find(ctx context.Context, email string, code string) (*models.OneTimeCode, error)
	Delete(ctx context.Context, otp *models.OneTimeCode) error
	// DeleteByEmail removes every outstanding code for email.
	DeleteByEmail(ctx context.Context, email string) error
}
