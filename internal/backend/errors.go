package backend

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrInvalidResponse = errors.New("backend response has no text")
)

// UpstreamError carries a non-2xx response from the backend.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.Status, e.Body)
}
