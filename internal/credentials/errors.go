package credentials

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("credential not found")
	ErrMissingToken = errors.New("access token is required")
)

// MapHTTPStatus maps credential errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrMissingToken) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
