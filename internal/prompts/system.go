package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/garunski/applymonitor/pkg/pagination"
)

// System defines the public contract for prompt domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Create inserts an inactive prompt.
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)

	// Active returns the active prompt for stage or ErrNoActivePrompt.
	Active(ctx context.Context, stage Stage) (*Prompt, error)

	// Activate makes id the only active prompt of stage. An empty stage
	// means the prompt's own stage; a prompt outside stage is not found.
	Activate(ctx context.Context, id uuid.UUID, stage Stage) (*Prompt, error)
}
