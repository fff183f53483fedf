package credentials

import "context"

// System defines the persistence contract for OAuth credentials.
type System interface {
	// Find returns the credential for the account or ErrNotFound.
	Find(ctx context.Context, accountID string) (*Credential, error)
	// Save upserts the credential for the account.
	Save(ctx context.Context, cmd SaveCommand) (*Credential, error)
	// Refresh overwrites the access token and expiry in place.
	Refresh(ctx context.Context, accountID string, cmd RefreshCommand) (*Credential, error)
	// Delete removes the credential or returns ErrNotFound.
	Delete(ctx context.Context, accountID string) error
}
