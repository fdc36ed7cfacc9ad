// Package apperr is the error vocabulary shared by services and the HTTP
// layer. Services return *Error values and httpkit turns their Kind into a
// status code and their Code into a machine-readable field.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	// KindConflict covers graph rejections and lost races on state changes.
	KindConflict
	KindInternal
	// KindUnavailable means the store failed or aborted the transaction.
	// Nothing was committed and the call may be retried.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Codes returned to clients in ErrorResponse.Code.
const (
	CodeNotFound            = "not_found"
	CodeValidation          = "validation"
	CodeConflict            = "conflict"
	CodeSelfSponsorship     = "self_sponsorship"
	CodeCycleDetected       = "cycle_detected"
	CodeInvariantViolation  = "invariant_violation"
	CodeForeignKeyViolation = "foreign_key_violation"
	CodeInvalidTransition   = "invalid_transition"
	CodeStorageFailure      = "storage_failure"
)

// Error is a classified error. Op names the repository operation for
// storage failures.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to a response status. Unclassified errors are
// treated as server faults.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func NotFound(message string) *Error {
	return New(KindNotFound, message).WithCode(CodeNotFound)
}

func Validation(message string) *Error {
	return New(KindValidation, message).WithCode(CodeValidation)
}

func Conflict(message string) *Error {
	return New(KindConflict, message).WithCode(CodeConflict)
}

func Internal(message string) *Error {
	return New(KindInternal, message)
}

// StorageFailure wraps a driver error. The message stays generic so SQL
// details never reach clients.
func StorageFailure(op string, err error) *Error {
	return Wrap(KindUnavailable, "storage unavailable", err).WithOp(op).WithCode(CodeStorageFailure)
}

// GetKind returns KindUnknown when err carries no *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
