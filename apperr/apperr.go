package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API-facing error carrying an HTTP status and optional
// field-level details. Service code returns these; the HTTP layer maps
// them onto the response envelope.
type Error struct {
	Message string
	Status  int
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation reports bad or missing input (400).
func Validation(message string, fields map[string]string) *Error {
	return &Error{Message: message, Status: http.StatusBadRequest, Fields: fields}
}

// Authorization reports an authenticated but not permitted request (403).
func Authorization(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{Message: message, Status: http.StatusForbidden}
}

// NotFound reports a missing resource (404). The message is derived from
// the resource type, e.g. "Track not found".
func NotFound(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}
	return &Error{Message: fmt.Sprintf("%s not found", resource), Status: http.StatusNotFound}
}

// FileUpload reports a storage-layer upload failure (422).
func FileUpload(message string) *Error {
	if message == "" {
		message = "File upload failed"
	}
	return &Error{Message: message, Status: http.StatusUnprocessableEntity}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsValidation reports whether err is a 400 API error.
func IsValidation(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == http.StatusBadRequest
}

// IsAuthorization reports whether err is a 403 API error.
func IsAuthorization(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == http.StatusForbidden
}
