// Package domainerrors defines the error taxonomy shared by services and the
// HTTP layer. Services attach a Code to every error they return; the transport
// layer maps codes to HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	// CodeValidation covers malformed or semantically invalid input.
	CodeValidation Code = "validation_error"

	// CodeUnauthorized covers missing, invalid, or expired credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden covers authenticated callers that lack permission:
	// role mismatch, ownership mismatch, cross-tenant access, and
	// subscription limits.
	CodeForbidden Code = "forbidden"

	// CodeNotFound covers resources that do not exist or are not visible
	// within the caller's tenant scope.
	CodeNotFound Code = "not_found"

	// CodeConflict covers uniqueness violations.
	CodeConflict Code = "conflict"

	// CodeInternal covers unexpected failures. Descriptions are never
	// surfaced to callers for this code.
	CodeInternal Code = "internal_error"

	// CodeInvariantViolation marks broken model invariants. Services
	// convert these to CodeValidation at the API boundary.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates err with a code and message while preserving the cause chain.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal so unexpected
// errors always fail closed with a generic response.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from err. Internal errors
// deliberately yield an empty message.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return ""
}

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
