package services

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInvariant    ErrorKind = "invariant"
	KindPayment      ErrorKind = "payment"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Error is the typed failure every service returns. Code is stable for
// clients; Messages are user-displayable.
type Error struct {
	Kind     ErrorKind
	Code     string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, code string, msgs []string) *Error {
	return &Error{Kind: kind, Code: code, Messages: msgs}
}

func Validation(code string, msgs ...string) *Error {
	return newError(KindValidation, code, msgs)
}

func NotFound(code string, msgs ...string) *Error {
	return newError(KindNotFound, code, msgs)
}

func Conflict(code string, msgs ...string) *Error {
	return newError(KindConflict, code, msgs)
}

func Invariant(code string, msgs ...string) *Error {
	return newError(KindInvariant, code, msgs)
}

func PaymentFailed(code string, msgs ...string) *Error {
	return newError(KindPayment, code, msgs)
}

func Forbidden(code string, msgs ...string) *Error {
	return newError(KindForbidden, code, msgs)
}

func Unauthorized(code string, msgs ...string) *Error {
	return newError(KindUnauthorized, code, msgs)
}

// Internal wraps an unexpected store or transport failure. The message stays
// generic; the cause is kept for logging.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Messages: []string{"An unexpected error occurred."}, Err: err}
}

// KindOf reports the kind of err, treating untyped errors as internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// AsError returns err as *Error, wrapping untyped errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return Internal(err)
}

// storeErr passes typed errors through and wraps everything else.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return Internal(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey recognises unique violations across the supported drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
