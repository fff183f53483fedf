// Package prompts stores the versioned templates used by each enrichment
// stage. At most one prompt per stage is active at a time.
package prompts

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a named template for an enrichment stage. Body holds
// {{placeholder}} markers substituted at render time.
type Prompt struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Stage     Stage     `json:"stage"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to create a new prompt.
type CreateCommand struct {
	Name  string `json:"name"`
	Stage Stage  `json:"stage"`
	Body  string `json:"body"`
}

// ActivateCommand optionally names the stage the prompt must belong to.
type ActivateCommand struct {
	Stage Stage `json:"stage,omitempty"`
}
