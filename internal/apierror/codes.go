package apierror

import "net/http"

// Code represents the kind of API error
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeDepthLimit    Code = "DEPTH_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
)

var statusCodeMap = map[Code]int{
	CodeValidation:    http.StatusUnprocessableEntity,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
	CodeNotFound:      http.StatusNotFound,
	CodeStateConflict: http.StatusUnprocessableEntity,
	CodeDepthLimit:    http.StatusUnprocessableEntity,
	CodeInternal:      http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (c Code) StatusCode() int {
	if status, ok := statusCodeMap[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
