package documents

import (
	"net/url"

	"github.com/finchlaw/redress/pkg/query"
	"github.com/finchlaw/redress/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("firm_id", "FirmID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("document_type", "DocumentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("text_key", "TextKey").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Status and DocumentType use exact matching;
// Filename uses case-insensitive contains matching.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	DocumentType *string `json:"document_type,omitempty"`
	Filename     *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("DocumentType", f.DocumentType).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if dt := values.Get("document_type"); dt != "" {
		f.DocumentType = &dt
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.FirmID,
		&d.Filename,
		&d.ContentType,
		&d.DocumentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.TextKey,
		&d.Status,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	return d, err
}
