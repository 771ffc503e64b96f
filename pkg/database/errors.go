package database

import "errors"

// ErrNotReady is returned when a handle is requested before Connect
// succeeds or after Close.
var ErrNotReady = errors.New("database not ready")
