// Package response defines the JSON envelopes shared by every API handler.
package response

// APIResponse is the uniform success envelope. Handlers alias it per
// endpoint so the payload type is visible next to the handler.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewError wraps a message in the failure envelope.
func NewError(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}
