package apierror

import "fmt"

// Error is a standardized API error carrying a taxonomy code, a
// human-readable message and optional field-level details
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status for this error
func (e *Error) StatusCode() int {
	return e.Code.StatusCode()
}

// Validation creates a VALIDATION_ERROR with field-level messages
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NotFound creates a NOT_FOUND error. Content that exists but is not
// visible to the actor uses this same error so private content is
// indistinguishable from absent content.
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// StateConflict creates a STATE_CONFLICT error for invalid state transitions
func StateConflict(message string) *Error {
	return &Error{Code: CodeStateConflict, Message: message}
}

// DepthLimitExceeded creates a DEPTH_LIMIT_EXCEEDED error for comment nesting
func DepthLimitExceeded(maxDepth int) *Error {
	return &Error{Code: CodeDepthLimit, Message: fmt.Sprintf("comment nesting is limited to %d levels", maxDepth)}
}

// Internal creates an INTERNAL_ERROR with detail withheld from the client
func Internal() *Error {
	return &Error{Code: CodeInternal, Message: "something went wrong"}
}
