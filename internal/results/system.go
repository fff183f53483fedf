package results

import "context"

// System defines the result store contract.
type System interface {
	Handler() *Handler

	// Create stores a result and marks its message processed with the
	// review flag. ErrMessageNotFound leaves nothing written.
	Create(ctx context.Context, cmd CreateCommand) (*Result, error)

	// Latest returns the newest result for a message.
	Latest(ctx context.Context, accountID, externalID string) (*Result, error)

	// History returns every result for a message, newest first.
	History(ctx context.Context, accountID, externalID string) ([]Result, error)
}
