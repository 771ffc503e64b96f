package enrichment

import (
	"errors"
	"net/http"
)

// Domain errors for enrichment operations.
var (
	// ErrEntryNotFound indicates no cached entry exists for the key.
	ErrEntryNotFound = errors.New("enrichment entry not found")
	// ErrFetchFailed marks a fetch that could not retrieve source text.
	// Classification proceeds with degraded features when it occurs.
	ErrFetchFailed = errors.New("enrichment_failed")
	// ErrInvalidKey indicates a key missing its source or document id.
	ErrInvalidKey = errors.New("invalid enrichment key")
	// ErrEmptySelector indicates an invalidation with no selector fields.
	ErrEmptySelector = errors.New("invalidation requires at least one selector")
)

// MapHTTPStatus maps enrichment domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEntryNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrEmptySelector) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFetchFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
