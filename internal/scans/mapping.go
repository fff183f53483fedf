package scans

import (
	"github.com/garunski/applymonitor/pkg/query"
	"github.com/garunski/applymonitor/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "scans", "s").
	Project("id", "ID").
	Project("account_id", "AccountID").
	Project("window_start", "WindowStart").
	Project("window_end", "WindowEnd").
	Project("status", "Status").
	Project("messages_found", "MessagesFound").
	Project("stored_count", "StoredCount").
	Project("list_error", "ListError").
	Project("created_at", "CreatedAt").
	Project("completed_at", "CompletedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

const returning = `id, account_id, window_start, window_end, status,
	messages_found, stored_count, list_error, created_at, completed_at`

func scanScan(s repository.Scanner) (Scan, error) {
	var sc Scan
	err := s.Scan(
		&sc.ID,
		&sc.AccountID,
		&sc.WindowStart,
		&sc.WindowEnd,
		&sc.Status,
		&sc.MessagesFound,
		&sc.StoredCount,
		&sc.ListError,
		&sc.CreatedAt,
		&sc.CompletedAt,
	)
	return sc, err
}
