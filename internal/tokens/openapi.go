package tokens

import "github.com/garunski/applymonitor/pkg/openapi"

type tokenSpec struct {
	Status     *openapi.Operation
	Auth       *openapi.Operation
	Callback   *openapi.Operation
	Disconnect *openapi.Operation
}

var spec = tokenSpec{
	Status: &openapi.Operation{
		Summary: "Mailbox connection status",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Connection status", "GmailStatus"),
		},
	},
	Auth: &openapi.Operation{
		Summary:    "Start the Gmail authorization flow",
		Parameters: []*openapi.Parameter{openapi.QueryParam("format", "string", "Set to json to receive the URL instead of a redirect", false)},
		Responses: map[int]*openapi.Response{
			200: {Description: "Consent URL (format=json)"},
			302: {Description: "Redirect to the provider consent page"},
		},
	},
	Callback: &openapi.Operation{
		Summary: "Complete the Gmail authorization flow",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("code", "string", "Authorization code", false),
			openapi.QueryParam("state", "string", "Signed state issued by /gmail/auth", true),
			openapi.QueryParam("error", "string", "Provider error", false),
		},
		Responses: map[int]*openapi.Response{
			302: {Description: "Redirect after the credential is stored"},
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			500: openapi.ResponseRef("InternalError"),
		},
	},
	Disconnect: &openapi.Operation{
		Summary: "Remove the stored mailbox credential",
		Responses: map[int]*openapi.Response{
			200: {Description: "Credential removed"},
		},
	},
}

// Schemas returns the component schemas referenced by mailbox connection routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"GmailStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"connected":  {Type: "boolean"},
				"expires_at": {Type: "string", Format: "date-time"},
			},
		},
	}
}
