package messages

import "github.com/garunski/applymonitor/pkg/openapi"

type messageSpec struct {
	List *openapi.Operation
	Find *openapi.Operation
	Raw  *openapi.Operation
}

var spec = messageSpec{
	List: &openapi.Operation{
		Summary: "List ingested emails",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search subject and sender", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields", false),
			openapi.QueryParam("processed", "boolean", "Filter by processed flag", false),
			openapi.QueryParam("needs_review", "boolean", "Filter by review flag", false),
			openapi.QueryParam("scan_id", "string", "Filter by originating scan", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Email page", "EmailPage"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find email by provider message id",
		Parameters: []*openapi.Parameter{openapi.StringPathParam("id", "Provider message id")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Email", "Email"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Raw: &openapi.Operation{
		Summary:    "Download archived provider metadata",
		Parameters: []*openapi.Parameter{openapi.StringPathParam("id", "Provider message id")},
		Responses: map[int]*openapi.Response{
			200: {Description: "Raw provider payload"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Schemas returns the component schemas referenced by email routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Email": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"account_id":   {Type: "string"},
				"external_id":  {Type: "string"},
				"scan_id":      {Type: "string", Format: "uuid"},
				"thread_id":    {Type: "string"},
				"subject":      {Type: "string"},
				"sender":       {Type: "string"},
				"recipient":    {Type: "string"},
				"snippet":      {Type: "string"},
				"sent_at":      {Type: "string", Format: "date-time"},
				"processed":    {Type: "boolean"},
				"needs_review": {Type: "boolean"},
				"created_at":   {Type: "string", Format: "date-time"},
			},
		},
		"EmailPage": openapi.PageOf("Email"),
	}
}
