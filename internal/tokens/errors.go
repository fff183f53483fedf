package tokens

import (
	"errors"
	"net/http"
)

var (
	ErrNotConnected        = errors.New("gmail account not connected")
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrInvalidState        = errors.New("invalid oauth state")
	ErrMissingCode         = errors.New("authorization code required")
	ErrExchangeFailed      = errors.New("authorization code exchange failed")
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// MapHTTPStatus maps token lifecycle errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCode),
		errors.Is(err, ErrAuthorizationDenied):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConnected),
		errors.Is(err, ErrRefreshFailed),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrExchangeFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
