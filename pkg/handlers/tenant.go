package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Identity headers set by the authenticating gateway in front of the API.
const (
	HeaderFirmID = "X-Firm-ID"
	HeaderUserID = "X-User-ID"
)

// Errors for missing or malformed identity headers.
var (
	ErrMissingFirm  = errors.New("missing or invalid firm identity header")
	ErrMissingActor = errors.New("missing or invalid user identity header")
)

// FirmID extracts the firm scope from the request identity headers.
func FirmID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get(HeaderFirmID))
	if err != nil {
		return uuid.Nil, ErrMissingFirm
	}
	return id, nil
}

// ActorID extracts the acting user from the request identity headers.
func ActorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get(HeaderUserID))
	if err != nil {
		return uuid.Nil, ErrMissingActor
	}
	return id, nil
}
