// Package scans runs mailbox ingestion over a date window and records each
// run as a scan row that moves from pending to completed exactly once.
package scans

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a scan.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Scan is one ingestion run for an account.
type Scan struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     string     `json:"account_id"`
	WindowStart   time.Time  `json:"window_start"`
	WindowEnd     time.Time  `json:"window_end"`
	Status        Status     `json:"status"`
	MessagesFound int        `json:"messages_found"`
	StoredCount   int        `json:"stored_count"`
	ListError     *string    `json:"list_error"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// CompleteCommand carries the final counts of a scan.
type CompleteCommand struct {
	MessagesFound int
	StoredCount   int
	ListError     *string
}

// OutcomeStatus is the per-message result of a scan.
type OutcomeStatus string

const (
	OutcomeStored    OutcomeStatus = "stored"
	OutcomeDuplicate OutcomeStatus = "duplicate"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome reports what happened to one listed message.
type Outcome struct {
	ExternalID string        `json:"external_id"`
	Status     OutcomeStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// Summary is returned by Run once the scan is completed.
type Summary struct {
	ScanID        uuid.UUID `json:"scan_id"`
	MessagesFound int       `json:"messages_found"`
	StoredCount   int       `json:"stored_count"`
	ListError     *string   `json:"list_error,omitempty"`
	Outcomes      []Outcome `json:"outcomes"`
}

// RunRequest is the body of POST /scan. Dates are RFC3339.
type RunRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// Window parses the optional request dates.
func (r RunRequest) Window() (start, end *time.Time, err error) {
	if start, err = parseDate(r.StartDate); err != nil {
		return nil, nil, err
	}
	if end, err = parseDate(r.EndDate); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
