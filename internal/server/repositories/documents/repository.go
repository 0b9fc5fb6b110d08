// Package documents persists document metadata. Every read is scoped to the
// owning user.
package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Document, error)
	// GetByID returns common.ErrorNotFound when the document is missing or
	// belongs to another user.
	GetByID(ctx context.Context, id string, userID string) (*models.Document, error)
}
