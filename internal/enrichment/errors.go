package enrichment

import (
	"errors"
	"net/http"

	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/results"
	"github.com/garunski/applymonitor/pkg/identity"
)

var (
	ErrClassifyFailed  = errors.New("classification failed")
	ErrExtractFailed   = errors.New("extraction failed")
	ErrSummarizeFailed = errors.New("summarization failed")
	ErrMissingUserID   = errors.New("user_id is required")
	ErrUserMismatch    = errors.New("user_id does not match the authenticated account")
	ErrNoMessageIDs    = errors.New("message_ids must not be empty")
)

// MapHTTPStatus maps enrichment errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, messages.ErrNotFound),
		errors.Is(err, results.ErrMessageNotFound),
		errors.Is(err, prompts.ErrNoActivePrompt):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingUserID),
		errors.Is(err, ErrNoMessageIDs):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserMismatch),
		errors.Is(err, identity.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
