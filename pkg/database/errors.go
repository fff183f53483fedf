package database

import "errors"

// ErrNotReady indicates the server could not be reached.
var ErrNotReady = errors.New("database not ready")
