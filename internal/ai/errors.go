package ai

import "errors"

// Sentinel errors for AI service calls.
var (
	// ErrUnavailable indicates the AI backend could not be reached or
	// returned an unusable response.
	ErrUnavailable = errors.New("ai service unavailable")
)
