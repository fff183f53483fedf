package openapi

import "maps"

// NewComponents returns the schemas and error responses every document
// shares. Error bodies are {"error": "..."}.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Malformed request or failed validation"),
			"Unauthorized":  errorResponse("Missing or invalid session"),
			"NotFound":      errorResponse("Resource not found"),
			"Conflict":      errorResponse("Resource state prevents the operation"),
			"InternalError": errorResponse("Unexpected server failure"),
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{Description: description, Content: jsonContent(SchemaRef("Error"))}
}

// AddSchemas merges schemas, replacing any with the same name.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// PageOf describes a page of the named component schema.
func PageOf(name string) *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"data":        {Type: "array", Items: SchemaRef(name)},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
}
