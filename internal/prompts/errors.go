package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt operations.
var (
	ErrNotFound       = errors.New("prompt not found")
	ErrDuplicate      = errors.New("stage already has an active prompt")
	ErrInvalidStage   = errors.New("stage must be classify, extract, or summarize")
	ErrInvalidPrompt  = errors.New("name and body are required")
	ErrNoActivePrompt = errors.New("no active prompt found for stage")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoActivePrompt) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStage) || errors.Is(err, ErrInvalidPrompt) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
