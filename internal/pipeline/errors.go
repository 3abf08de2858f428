package pipeline

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrFetchFailed      = errors.New("failed to fetch document text")
	ErrAnalyzeFailed    = errors.New("document analysis failed")
)
