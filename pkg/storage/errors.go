package storage

import "errors"

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty blob key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates a blob key with a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)
