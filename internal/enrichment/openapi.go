package enrichment

import "github.com/garunski/applymonitor/pkg/openapi"

type processSpec struct {
	Process *openapi.Operation
	Batch   *openapi.Operation
}

var spec = processSpec{
	Process: &openapi.Operation{
		Summary:     "Classify, extract and summarize one email",
		Parameters:  []*openapi.Parameter{openapi.StringPathParam("message_id", "Provider message id")},
		RequestBody: openapi.RequestBodyJSON("ProcessRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Processing completed", "ProcessResponse"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Batch: &openapi.Operation{
		Summary:     "Process several emails in order",
		Description: "Per-item failures are reported as outcomes.",
		RequestBody: openapi.RequestBodyJSON("BatchRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Per-item outcomes", "BatchResponse"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
}

// Schemas returns the component schemas referenced by processing routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ProcessRequest": {
			Type:       "object",
			Required:   []string{"user_id"},
			Properties: map[string]*openapi.Schema{"user_id": {Type: "string"}},
		},
		"ProcessResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"message": {Type: "string"},
				"result":  openapi.SchemaRef("AIResult"),
			},
		},
		"BatchRequest": {
			Type:     "object",
			Required: []string{"user_id", "message_ids"},
			Properties: map[string]*openapi.Schema{
				"user_id":     {Type: "string"},
				"message_ids": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"BatchResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"results": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"external_id": {Type: "string"},
							"status":      {Type: "string", Enum: []any{"success", "error"}},
							"error":       {Type: "string"},
						},
					},
				},
			},
		},
	}
}
