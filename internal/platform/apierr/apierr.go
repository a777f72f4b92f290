// Package apierr defines the service error taxonomy and its mapping onto
// HTTP responses. Services return *Error values; the echo error handler in
// handler.go turns them into `{"error": "..."}` bodies with the right status.
package apierr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error for status-code mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindTokenMissing
	KindTokenInvalid
	KindConflict
	KindNotFound
	KindInvalidTransition
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenMissing:
		return "token_missing"
	case KindTokenInvalid:
		return "token_invalid"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-safe message, and an optional wrapped cause.
// The cause is logged server-side but never rendered to the client outside
// development.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) *Error { return New(KindValidation, message) }

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials")
}

func Conflict(message string) *Error { return New(KindConflict, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// PostgreSQL SQLSTATEs that map onto the taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// FromPG maps storage-layer errors onto the taxonomy: unique-key and
// foreign-key violations become Conflict, missing rows become NotFound,
// anything else is Internal with the given message.
func FromPG(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgUniqueViolation || pgErr.Code == pgForeignKeyViolation) {
		return &Error{Kind: KindConflict, Message: message, Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: message, Cause: err}
	}
	return Internal(message, err)
}
