// Package messages stores ingested mail metadata. Rows are keyed by
// (account_id, external_id) and written once; only the processed and
// needs_review flags change afterward.
package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/pkg/storage"
)

// Message is a persisted mailbox message.
type Message struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   string     `json:"account_id"`
	ExternalID  string     `json:"external_id"`
	ScanID      *uuid.UUID `json:"scan_id"`
	ThreadID    *string    `json:"thread_id"`
	Subject     *string    `json:"subject"`
	Sender      *string    `json:"sender"`
	Recipient   *string    `json:"recipient"`
	Snippet     *string    `json:"snippet"`
	SentAt      *time.Time `json:"sent_at"`
	Processed   bool       `json:"processed"`
	NeedsReview bool       `json:"needs_review"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InsertCommand carries the fields of a newly fetched message.
type InsertCommand struct {
	AccountID  string
	ExternalID string
	ScanID     *uuid.UUID
	ThreadID   *string
	Subject    *string
	Sender     *string
	Recipient  *string
	Snippet    *string
	SentAt     *time.Time
}

// ArchiveKey is the blob key holding the raw provider payload of a message.
func ArchiveKey(accountID, externalID string) (string, error) {
	return storage.Key(accountID, externalID+".json")
}
