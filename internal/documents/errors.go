package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
	ErrNoText    = errors.New("document text not available")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrNoText) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
