package models

import "time"

// Document is the metadata of an uploaded PDF. PDFURL is either an absolute
// URL or an object-storage key issued by the upload endpoint.
type Document struct {
	ID               string
	UserID           string
	Name             string
	PDFURL           string
	OriginalFileName string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
