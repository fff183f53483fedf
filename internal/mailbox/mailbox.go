// Package mailbox is a stateless adapter over the Gmail REST API. It lists
// message ids for a search query and fetches per-message header metadata.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const user = "me"

// MetadataHeaders are the headers requested with format=metadata.
var MetadataHeaders = []string{"Subject", "From", "To", "Cc", "Bcc", "Date"}

// Ref identifies a message in a list page.
type Ref struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
}

// Page is one page of list results.
type Page struct {
	IDs           []Ref
	NextPageToken string
}

// Metadata is the decoded header view of a single message.
// Absent headers are nil.
type Metadata struct {
	ID            string
	ThreadID      string
	Subject       *string
	Sender        *string
	SenderAddress *string
	Recipient     *string
	Snippet       *string
	RawDate       *string
	SentAt        *time.Time
	// Raw is the provider response as received, used for archival.
	Raw []byte
}

// Client lists and fetches messages on behalf of an access token.
type Client interface {
	ListPage(ctx context.Context, accessToken, query string, pageSize int, pageToken string) (*Page, error)
	FetchMessage(ctx context.Context, accessToken, id string) (*Metadata, error)
}

type client struct {
	endpoint string
	logger   *slog.Logger
}

// New creates a Client for the Gmail API rooted at endpoint.
func New(endpoint string, logger *slog.Logger) Client {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &client{
		endpoint: endpoint,
		logger:   logger.With("system", "mailbox"),
	}
}

// BuildQuery renders a Gmail search query bounding messages to [start, end)
// in epoch seconds.
func BuildQuery(start, end time.Time) string {
	return fmt.Sprintf("after:%d before:%d", start.Unix(), end.Unix())
}

func (c *client) service(ctx context.Context, accessToken string) (*gmail.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	svc, err := gmail.NewService(
		ctx,
		option.WithHTTPClient(oauth2.NewClient(ctx, src)),
		option.WithEndpoint(c.endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

func (c *client) ListPage(
	ctx context.Context,
	accessToken, query string,
	pageSize int,
	pageToken string,
) (*Page, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	call := svc.Users.Messages.List(user).
		Q(query).
		MaxResults(int64(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, providerError(err)
	}

	page := &Page{
		IDs:           make([]Ref, 0, len(resp.Messages)),
		NextPageToken: resp.NextPageToken,
	}
	for _, m := range resp.Messages {
		page.IDs = append(page.IDs, Ref{ID: m.Id, ThreadID: m.ThreadId})
	}

	c.logger.Debug("listed page", "count", len(page.IDs), "has_next", page.NextPageToken != "")
	return page, nil
}

func (c *client) FetchMessage(ctx context.Context, accessToken, id string) (*Metadata, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(user, id).
		Format("metadata").
		MetadataHeaders(MetadataHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError(err)
	}

	meta := decode(msg)
	if raw, err := msg.MarshalJSON(); err == nil {
		meta.Raw = raw
	}
	return meta, nil
}

func providerError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ProviderError{Status: gerr.Code, Body: gerr.Body}
	}
	return fmt.Errorf("gmail request: %w", err)
}
