package scans

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/internal/mailbox"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/pkg/pagination"
)

// System defines the ingestion contract.
type System interface {
	Handler() *Handler

	// Run ingests the account's mail over [start, end). Nil bounds take the
	// configured defaults. The scan row is completed even when listing
	// stops early or ctx is cancelled.
	Run(ctx context.Context, accountID string, start, end *time.Time) (*Summary, error)

	Find(ctx context.Context, accountID string, id uuid.UUID) (*Scan, error)
	List(ctx context.Context, accountID string, page pagination.PageRequest) (*pagination.PageResult[Scan], error)
}

// TokenProvider yields a usable access token for an account.
type TokenProvider interface {
	AccessToken(ctx context.Context, accountID string) (string, error)
}

// Mailbox lists and fetches provider messages.
type Mailbox interface {
	ListPage(ctx context.Context, accessToken, query string, pageSize int, pageToken string) (*mailbox.Page, error)
	FetchMessage(ctx context.Context, accessToken, id string) (*mailbox.Metadata, error)
}

// MessageWriter stores fetched messages idempotently.
type MessageWriter interface {
	Insert(ctx context.Context, cmd messages.InsertCommand) (bool, error)
}

// Archive receives raw provider payloads.
type Archive interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
}
