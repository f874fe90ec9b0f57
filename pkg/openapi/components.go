package openapi

// Components holds reusable responses.
type Components struct {
	Responses map[string]*Response `json:"responses,omitempty"`
}

// NewComponents creates Components with the shared error responses. Every
// error body is {"error": "<message>"}.
func NewComponents() *Components {
	return &Components{
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Invalid request"),
			"NotFound":      errorResponse("Resource not found"),
			"InternalError": errorResponse("Internal error"),
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {
				Schema: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"error": {Type: "string", Description: "Error message"},
					},
				},
			},
		},
	}
}
