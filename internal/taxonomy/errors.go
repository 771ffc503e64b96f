package taxonomy

import (
	"errors"
	"net/http"
)

// Domain errors for taxonomy operations.
var (
	ErrVersionNotFound = errors.New("catalog version not found")
	ErrVersionExists   = errors.New("catalog version already exists")
	ErrInvalidCatalog  = errors.New("invalid catalog document")
	ErrNoVersions      = errors.New("no catalog versions available")
)

// MapHTTPStatus maps taxonomy domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrVersionNotFound) || errors.Is(err, ErrNoVersions) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrVersionExists) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCatalog) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
