package messages

import (
	"errors"
	"net/http"

	"github.com/garunski/applymonitor/pkg/storage"
)

var (
	ErrNotFound        = errors.New("message not found")
	ErrMissingID       = errors.New("account id and external id are required")
	ErrArchiveDisabled = errors.New("message archive not configured")
)

// MapHTTPStatus maps message and archive errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := storage.MapHTTPStatus(err); status != 0 {
		return status
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrArchiveDisabled):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
