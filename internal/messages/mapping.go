package messages

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "messages", "m").
	Project("id", "ID").
	Project("account_id", "AccountID").
	Project("external_id", "ExternalID").
	Project("scan_id", "ScanID").
	Project("thread_id", "ThreadID").
	Project("subject", "Subject").
	Project("sender", "Sender").
	Project("recipient", "Recipient").
	Project("snippet", "Snippet").
	Project("sent_at", "SentAt").
	Project("processed", "Processed").
	Project("needs_review", "NeedsReview").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "SentAt", Descending: true},
	{Field: "CreatedAt", Descending: true},
}

// Filters contains optional filtering criteria for message queries.
type Filters struct {
	Processed   *bool      `json:"processed,omitempty"`
	NeedsReview *bool      `json:"needs_review,omitempty"`
	ScanID      *uuid.UUID `json:"scan_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Processed", f.Processed).
		WhereEquals("NeedsReview", f.NeedsReview).
		WhereEquals("ScanID", f.ScanID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("processed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Processed = &b
		}
	}

	if v := values.Get("needs_review"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.NeedsReview = &b
		}
	}

	if v := values.Get("scan_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ScanID = &id
		}
	}

	return f
}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	err := s.Scan(
		&m.ID,
		&m.AccountID,
		&m.ExternalID,
		&m.ScanID,
		&m.ThreadID,
		&m.Subject,
		&m.Sender,
		&m.Recipient,
		&m.Snippet,
		&m.SentAt,
		&m.Processed,
		&m.NeedsReview,
		&m.CreatedAt,
	)
	return m, err
}
