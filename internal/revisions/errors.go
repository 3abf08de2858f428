package revisions

import (
	"errors"
	"net/http"
)

// Domain errors for revision operations.
var (
	ErrNotFound  = errors.New("revision not found")
	ErrDuplicate = errors.New("revision number already recorded")
)

// MapHTTPStatus maps revision domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
