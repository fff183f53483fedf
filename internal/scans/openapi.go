package scans

import "github.com/garunski/applymonitor/pkg/openapi"

type scanSpec struct {
	Run  *openapi.Operation
	Find *openapi.Operation
	List *openapi.Operation
}

var spec = scanSpec{
	Run: &openapi.Operation{
		Summary:     "Run a mailbox scan",
		Description: "Fetches messages in the window and stores new ones. Defaults to the last 7 days.",
		RequestBody: openapi.RequestBodyJSON("RunRequest", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Scan summary", "ScanSummary"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find scan by ID",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Scan UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Scan record", "Scan"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	List: &openapi.Operation{
		Summary: "List scans",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Scan page", "ScanPage"),
		},
	},
}

// Schemas returns the component schemas referenced by scan routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"RunRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"start_date": {Type: "string", Format: "date-time"},
				"end_date":   {Type: "string", Format: "date-time"},
			},
		},
		"Scan": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"account_id":     {Type: "string"},
				"window_start":   {Type: "string", Format: "date-time"},
				"window_end":     {Type: "string", Format: "date-time"},
				"status":         {Type: "string", Enum: []any{"pending", "completed"}},
				"messages_found": {Type: "integer"},
				"stored_count":   {Type: "integer"},
				"list_error":     {Type: "string"},
				"created_at":     {Type: "string", Format: "date-time"},
				"completed_at":   {Type: "string", Format: "date-time"},
			},
		},
		"ScanSummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"scan_id":        {Type: "string", Format: "uuid"},
				"messages_found": {Type: "integer"},
				"stored_count":   {Type: "integer"},
				"list_error":     {Type: "string"},
				"outcomes": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"external_id": {Type: "string"},
							"status":      {Type: "string", Enum: []any{"stored", "duplicate", "skipped", "failed"}},
							"error":       {Type: "string"},
						},
					},
				},
			},
		},
		"ScanPage": openapi.PageOf("Scan"),
	}
}
