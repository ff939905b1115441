// Package apperror defines the error taxonomy shared by every transport:
// validation failures, missing records, rejected credentials and upstream
// (store or signer) failures.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUpstream
	KindUnauthorized
)

// Error is an application error carrying enough context to build a response.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps a request field to its validation message.
	Fields map[string]string
	// Detail is reported alongside Message when the public message is generic.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationFields reports field-level validation failures.
func ValidationFields(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports a reference to a record that does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized reports a write attempted without a valid bearer token.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Upstream reports a failed store or signer call. The upstream message is
// surfaced verbatim.
func Upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Message: err.Error(), Err: err}
}

// UpstreamWithMessage reports a failed upstream call under a generic message,
// keeping the cause as Detail.
func UpstreamWithMessage(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Detail: err.Error(), Err: err}
}

// Status maps err to an HTTP status code. Errors outside the taxonomy are
// treated as upstream failures.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON error body for err.
func Body(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return map[string]interface{}{"error": err.Error()}
	}
	body := map[string]interface{}{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	if appErr.Detail != "" {
		body["message"] = appErr.Detail
	}
	return body
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
