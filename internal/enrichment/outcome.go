package enrichment

import "github.com/garunski/applymonitor/internal/results"

// OutcomeStatus reports how a batch item ended.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusError   OutcomeStatus = "error"
)

// Outcome is the result of one batch item.
type Outcome struct {
	ExternalID string        `json:"external_id"`
	Status     OutcomeStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// ProcessRequest is the body of POST /process/{message_id}.
type ProcessRequest struct {
	UserID string `json:"user_id"`
}

// ProcessResponse is returned by a successful single-message run.
type ProcessResponse struct {
	Message string          `json:"message"`
	Result  *results.Result `json:"result"`
}

// BatchRequest is the body of POST /process/batch.
type BatchRequest struct {
	MessageIDs []string `json:"message_ids"`
	UserID     string   `json:"user_id"`
}

// BatchResponse carries one outcome per requested id.
type BatchResponse struct {
	Results []Outcome `json:"results"`
}

func failure(id string, err error) Outcome {
	return Outcome{ExternalID: id, Status: StatusError, Error: err.Error()}
}
