// internal/api/types/response.go
package types

// Response is the envelope every endpoint returns: either success with
// a data payload or failure with a client-safe error message.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps a payload in a success envelope.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Fail wraps a message in a failure envelope.
func Fail(message string) Response {
	return Response{Success: false, Error: message}
}
