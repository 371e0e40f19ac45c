// Package apierr carries an HTTP status with workflow errors so handlers can
// answer with the right code without string matching.
package apierr

import (
	"errors"
	"net/http"
)

// Error is a workflow failure with the status to report and a human-readable message.
type Error struct {
	Status  int
	Message string
	// Details is merged into the JSON error body (field errors, current
	// invitation status, partial-creation manifests).
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With returns a copy of e carrying an extra detail.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func BadRequest(msg string) *Error { return New(http.StatusBadRequest, msg) }
func Forbidden(msg string) *Error  { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error   { return New(http.StatusNotFound, msg) }

// Internal wraps an unexpected failure. The wrapped error is logged, never
// sent to the client.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
