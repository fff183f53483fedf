// Package results stores enrichment output. A message may have many
// results; the newest by created_at is its current one.
package results

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Result is one enrichment run over a message.
type Result struct {
	ID                uuid.UUID       `json:"id"`
	AccountID         string          `json:"account_id"`
	MessageExternalID string          `json:"message_external_id"`
	Category          *string         `json:"category"`
	Confidence        *float64        `json:"confidence"`
	Company           *string         `json:"company"`
	JobTitle          *string         `json:"job_title"`
	Summary           *string         `json:"summary"`
	ExtractedData     json.RawMessage `json:"extracted_data"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CreateCommand carries a finished enrichment run. NeedsReview is written
// to the source message, which is marked processed in the same transaction.
type CreateCommand struct {
	AccountID         string
	MessageExternalID string
	Category          *string
	Confidence        *float64
	Company           *string
	JobTitle          *string
	Summary           *string
	ExtractedData     json.RawMessage
	NeedsReview       bool
}
