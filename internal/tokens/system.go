// Package tokens manages the OAuth lifecycle for connected mailboxes:
// authorization, code exchange, and handing out usable access tokens.
package tokens

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Config carries the OAuth client and state settings.
type Config struct {
	OAuth           *oauth2.Config
	StateTTL        time.Duration
	SuccessRedirect string
	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// Status reports whether an account has a usable mailbox connection.
type Status struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// System defines the token lifecycle contract.
type System interface {
	Handler() *Handler

	// AccessToken returns a usable access token for the account, refreshing
	// it first when the stored one has expired.
	AccessToken(ctx context.Context, accountID string) (string, error)
	// AuthURL returns the provider consent URL with a signed state bound to the account.
	AuthURL(accountID string) (string, error)
	// Connect verifies state, exchanges code, and stores the credential.
	// It returns the account id bound to state.
	Connect(ctx context.Context, state, code string) (string, error)
	Status(ctx context.Context, accountID string) (*Status, error)
	Disconnect(ctx context.Context, accountID string) error
}
