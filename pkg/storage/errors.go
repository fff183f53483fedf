package storage

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("blob key is empty")
	ErrInvalidKey = errors.New("blob key contains a traversal segment")
)

// MapHTTPStatus reports 404 for missing blobs and 400 for rejected keys.
// It returns 0 for errors this package does not define so callers can fall
// through to their own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	}
	return 0
}
