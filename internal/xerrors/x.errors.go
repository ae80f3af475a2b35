package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Accounts
var (
	ErrUserNotFound = errors.New("user not found")
)

// OTP / sessions
var (
	ErrInvalidOTP      = errors.New("invalid otp")
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError is a bad input shape or range. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DependencyError is a failed call to an external store or provider.
// Handlers map it to 500. The underlying cause stays server-side.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

func Dependency(op string, err error) error { return &DependencyError{Op: op, Err: err} }

// IsDependency reports whether err is (or wraps) a DependencyError.
func IsDependency(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}

func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}
