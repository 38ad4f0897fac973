package schemas

import "github.com/danielgtaylor/huma/v2"

// Error is the JSON error body for every JSON-shaped endpoint:
// {"error": "<kind>"}. Messages are fixed strings; underlying causes are
// logged, never echoed.
type Error struct {
	status  int
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) GetStatus() int {
	return e.status
}

// ContentType overrides huma's application/problem+json default.
func (e *Error) ContentType(string) string {
	return "application/json"
}

// NewError replaces huma.NewError so all error responses share the Error
// shape. Underlying errors are intentionally dropped from the body.
func NewError(status int, message string, _ ...error) huma.StatusError {
	return &Error{status: status, Message: message}
}
