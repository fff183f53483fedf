package results

import "github.com/garunski/applymonitor/pkg/openapi"

type resultSpec struct {
	Latest  *openapi.Operation
	History *openapi.Operation
}

var spec = resultSpec{
	Latest: &openapi.Operation{
		Summary:    "Latest enrichment result of an email",
		Parameters: []*openapi.Parameter{openapi.StringPathParam("message_id", "Provider message id")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Result", "AIResult"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	History: &openapi.Operation{
		Summary:    "All enrichment results of an email, newest first",
		Parameters: []*openapi.Parameter{openapi.StringPathParam("message_id", "Provider message id")},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Results",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("AIResult")}},
				},
			},
		},
	},
}

// Schemas returns the component schemas referenced by result routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"AIResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                  {Type: "string", Format: "uuid"},
				"account_id":          {Type: "string"},
				"message_external_id": {Type: "string"},
				"category":            {Type: "string"},
				"confidence":          {Type: "number"},
				"company":             {Type: "string"},
				"job_title":           {Type: "string"},
				"summary":             {Type: "string"},
				"extracted_data":      {Type: "object"},
				"created_at":          {Type: "string", Format: "date-time"},
			},
		},
	}
}
