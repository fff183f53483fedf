package results

import (
	"encoding/json"

	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "ai_results", "r").
	Project("id", "ID").
	Project("account_id", "AccountID").
	Project("message_external_id", "MessageExternalID").
	Project("category", "Category").
	Project("confidence", "Confidence").
	Project("company", "Company").
	Project("job_title", "JobTitle").
	Project("summary", "Summary").
	Project("extracted_data", "ExtractedData").
	Project("created_at", "CreatedAt")

var newestFirst = query.SortField{Field: "CreatedAt", Descending: true}

const returning = `id, account_id, message_external_id, category, confidence,
	company, job_title, summary, extracted_data, created_at`

func scanResult(s repository.Scanner) (Result, error) {
	var (
		r    Result
		data []byte
	)
	err := s.Scan(
		&r.ID,
		&r.AccountID,
		&r.MessageExternalID,
		&r.Category,
		&r.Confidence,
		&r.Company,
		&r.JobTitle,
		&r.Summary,
		&data,
		&r.CreatedAt,
	)
	if len(data) > 0 {
		r.ExtractedData = json.RawMessage(data)
	}
	return r, err
}
