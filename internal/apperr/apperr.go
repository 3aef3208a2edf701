// Package apperr defines the error taxonomy every operation reports through:
// validation, unauthorized, forbidden, not-found and conflict failures, each
// carrying the status code the transport envelope uses.
package apperr

import (
	"errors"
	"net/http"
)

// FieldViolation describes one invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a client-classifiable failure. Violations is non-nil only for
// validation errors.
type Error struct {
	Status     int
	Message    string
	Violations []FieldViolation
}

func (e *Error) Error() string {
	return e.Message
}

// Validation aggregates all field violations of a single input.
func Validation(violations []FieldViolation) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "Invalid Input", Violations: violations}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// From classifies err, normalizing anything outside the taxonomy to a 500
// with a generic message so no internal detail crosses the boundary.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Message: "An error occurred."}
}
