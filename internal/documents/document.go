// Package documents implements the document domain for Redress.
// Documents are uploaded and maintained by the intake service; this
// package provides firm-scoped read access to their metadata and to
// the extracted text stored alongside each blob.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document represents a registered case document with its metadata and
// blob storage reference.
type Document struct {
	ID           uuid.UUID `json:"id"`
	FirmID       uuid.UUID `json:"firm_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	DocumentType string    `json:"document_type"`
	SizeBytes    int64     `json:"size_bytes"`
	StorageKey   string    `json:"storage_key"`
	TextKey      *string   `json:"text_key,omitempty"`
	Status       string    `json:"status"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
