package api

import "time"

// Error types returned in the JSON envelope.
const (
	ErrTypeValidation = "validation_error"
	ErrTypeRange      = "range_error"
	ErrTypeParameter  = "invalid_parameter"
	ErrTypeNotFound   = "not_found"
	ErrTypeInternal   = "internal_error"
)

// EngineError is the structured error envelope every failing request gets.
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// newEngineError builds an envelope stamped with the current time.
func newEngineError(errType, message, requestID string, context map[string]any) EngineError {
	return EngineError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
