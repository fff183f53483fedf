package scans

import (
	"errors"
	"net/http"

	"github.com/garunski/applymonitor/internal/tokens"
)

var (
	ErrNotFound       = errors.New("scan not found")
	ErrInvalidWindow  = errors.New("start_date must be before end_date")
	ErrWindowTooLarge = errors.New("Date range cannot exceed 90 days")
	ErrInvalidDate    = errors.New("invalid date, expected RFC3339")
	ErrNotPending     = errors.New("scan already completed")
)

// MapHTTPStatus maps scan and token errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidWindow),
		errors.Is(err, ErrWindowTooLarge),
		errors.Is(err, ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotPending):
		return http.StatusConflict
	default:
		return tokens.MapHTTPStatus(err)
	}
}
