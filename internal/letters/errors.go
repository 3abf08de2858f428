package letters

import (
	"errors"
	"net/http"

	"github.com/finchlaw/redress/internal/workflow"
)

// Domain errors for letter operations.
var (
	ErrNotFound         = errors.New("letter not found")
	ErrDuplicate        = errors.New("letter already exists")
	ErrDocumentNotFound = errors.New("letter document not found")
	ErrNoDocuments      = errors.New("letter has no documents to analyze")
	ErrStateConflict    = errors.New("letter state changed concurrently")
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrGenerationFailed = errors.New("generation failed")
	ErrRefinementFailed = errors.New("refinement failed")
	ErrInvalidRequest   = errors.New("invalid request")
)

// MapHTTPStatus maps letter domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, ErrStateConflict),
		errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrNoDocuments),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAnalysisFailed),
		errors.Is(err, ErrGenerationFailed),
		errors.Is(err, ErrRefinementFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
