// Package credentials persists one OAuth credential per account for the mail provider.
package credentials

import "time"

// Credential is the stored OAuth grant for an account. Token values never
// leave the service, so they are excluded from JSON.
type Credential struct {
	AccountID    string    `json:"account_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveCommand carries the token set returned by an authorization code exchange.
// An empty RefreshToken keeps the stored one.
type SaveCommand struct {
	AccountID    string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// RefreshCommand carries the result of a refresh grant.
// An empty RefreshToken keeps the stored one.
type RefreshCommand struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
