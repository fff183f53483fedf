package results

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("ai result not found")
	ErrMessageNotFound = errors.New("message not found")
)

// MapHTTPStatus maps result errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
