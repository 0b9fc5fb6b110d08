package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/storage"
	"github.com/google/uuid"
)

// Presigner hands out object storage URLs.
type Presigner interface {
	PresignPut(ctx context.Context, userID string) (key string, url string, err error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// DocumentService manages the documents of the signed-in user. Every
// operation is scoped to the owner passed in.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	logger      logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, p Presigner, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		presigner:   p,
		logger:      logger.With("module", "document_service"),
	}
}

func (s *DocumentService) Create(ctx context.Context, userID, name, pdfURL, originalFileName string) (*models.Document, error) {
	if pdfURL == "" {
		return nil, &common.ValidationError{Field: "pdfUrl", Message: "PDF URL is required"}
	}
	if storage.IsKey(pdfURL) && !storage.IsOwnedKey(pdfURL, userID) {
		return nil, &common.ValidationError{Field: "pdfUrl", Message: "PDF URL does not belong to the user"}
	}

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{
		UserID:           userID,
		Name:             name,
		PDFURL:           pdfURL,
		OriginalFileName: originalFileName,
	})
	if err != nil {
		s.logger.Error(ctx, "create document", "error", err)
		return nil, common.ErrorInternal
	}

	return doc, nil
}

// List returns the user's documents, newest first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*models.Document, error) {
	docs, err := s.repomanager.Documents(s.db).ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "list documents", "error", err)
		return nil, common.ErrorInternal
	}
	return docs, nil
}

func (s *DocumentService) UploadURL(ctx context.Context, userID string) (string, string, error) {
	key, url, err := s.presigner.PresignPut(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "presign upload", "error", err)
		return "", "", common.ErrorInternal
	}
	return key, url, nil
}

// DownloadURL returns a short-lived link to the document's PDF. Documents
// registered with an external URL get that URL back unchanged.
func (s *DocumentService) DownloadURL(ctx context.Context, userID, documentID string) (string, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return "", common.ErrorNotFound
	}

	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		s.logger.Error(ctx, "get document", "error", err)
		return "", common.ErrorInternal
	}

	if !storage.IsKey(doc.PDFURL) {
		return doc.PDFURL, nil
	}
	if !storage.IsOwnedKey(doc.PDFURL, userID) {
		s.logger.Warn(ctx, "document key outside owner prefix", "document_id", doc.ID)
		return "", common.ErrorNotFound
	}

	url, err := s.presigner.PresignGet(ctx, doc.PDFURL)
	if err != nil {
		s.logger.Error(ctx, "presign download", "error", err)
		return "", common.ErrorInternal
	}
	return url, nil
}
