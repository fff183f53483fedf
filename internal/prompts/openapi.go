package prompts

import "github.com/garunski/applymonitor/pkg/openapi"

type promptSpec struct {
	List     *openapi.Operation
	Stages   *openapi.Operation
	Find     *openapi.Operation
	Active   *openapi.Operation
	Create   *openapi.Operation
	Search   *openapi.Operation
	Activate *openapi.Operation
}

var spec = promptSpec{
	List: &openapi.Operation{
		Summary: "List prompts",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("stage", "string", "Filter by stage", false),
			openapi.QueryParam("name", "string", "Filter by name (contains)", false),
			openapi.QueryParam("active", "boolean", "Filter by active flag", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt page", "PromptPage"),
		},
	},
	Stages: &openapi.Operation{
		Summary: "List prompt stages",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Stage names",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
				},
			},
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find prompt by ID",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Active: &openapi.Operation{
		Summary:    "Find the active prompt of a stage",
		Parameters: []*openapi.Parameter{openapi.StringPathParam("stage", "Prompt stage")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Active prompt", "Prompt"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create an inactive prompt",
		RequestBody: openapi.RequestBodyJSON("CreatePrompt", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created prompt", "Prompt"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search prompts",
		RequestBody: openapi.RequestBodyJSON("PromptSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt page", "PromptPage"),
		},
	},
	Activate: &openapi.Operation{
		Summary:     "Activate a prompt",
		Description: "Deactivates every other prompt of the same stage in one transaction.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt UUID")},
		RequestBody: openapi.RequestBodyJSON("ActivatePrompt", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Activated prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

// Schemas returns the component schemas referenced by prompt routes.
func Schemas() map[string]*openapi.Schema {
	stages := make([]any, 0, len(Stages()))
	for _, s := range Stages() {
		stages = append(stages, string(s))
	}

	return map[string]*openapi.Schema{
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"name":       {Type: "string"},
				"stage":      {Type: "string", Enum: stages},
				"body":       {Type: "string"},
				"active":     {Type: "boolean"},
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"CreatePrompt": {
			Type:     "object",
			Required: []string{"name", "stage", "body"},
			Properties: map[string]*openapi.Schema{
				"name":  {Type: "string"},
				"stage": {Type: "string", Enum: stages},
				"body":  {Type: "string", Description: "Template with {{from_email}}, {{subject}}, {{body}} and {{category}} placeholders"},
			},
		},
		"ActivatePrompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage": {Type: "string", Enum: stages, Description: "Must match the prompt's stage when given"},
			},
		},
		"PromptSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":      {Type: "integer", Example: 1},
				"page_size": {Type: "integer", Example: 20},
				"search":    {Type: "string", Description: "Substring of name or body"},
				"sort":      {Type: "string", Description: "Comma-separated fields, - prefix for descending", Example: "-CreatedAt"},
				"stage":     {Type: "string", Enum: stages},
				"name":      {Type: "string"},
				"active":    {Type: "boolean"},
			},
		},
		"PromptPage": openapi.PageOf("Prompt"),
	}
}
