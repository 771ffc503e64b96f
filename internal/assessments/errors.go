package assessments

import (
	"errors"
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/awards"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
)

// Domain errors for assessment operations.
var (
	ErrNotFound       = errors.New("assessment not found")
	ErrDuplicate      = errors.New("assessment already exists")
	ErrInvalidRequest = errors.New("invalid assessment request")
)

// MapHTTPStatus maps assessment domain errors to HTTP status codes,
// delegating to the award and taxonomy domains for their errors.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, awards.ErrNotFound) || errors.Is(err, taxonomy.ErrVersionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
