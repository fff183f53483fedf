package messages

import (
	"context"

	"github.com/garunski/applymonitor/pkg/pagination"
)

// System defines the message store contract.
type System interface {
	Handler() *Handler

	// Insert stores a message unless (account_id, external_id) already exists.
	// It reports whether a new row was written.
	Insert(ctx context.Context, cmd InsertCommand) (bool, error)

	Find(ctx context.Context, accountID, externalID string) (*Message, error)

	List(
		ctx context.Context,
		accountID string,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Message], error)
}
