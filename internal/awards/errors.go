package awards

import (
	"errors"
	"net/http"
)

// Domain errors for award operations.
var (
	ErrNotFound     = errors.New("award not found")
	ErrDuplicate    = errors.New("award already exists")
	ErrInvalidAward = errors.New("invalid award payload")
)

// MapHTTPStatus maps award domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidAward) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
