package application

import (
	"errors"

	"github.com/Pari658/Expense-Management/pkg/helpers"
)

// Error kinds. Handlers map them onto HTTP status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Error carries a caller-facing message and one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func invalid(msg string) error      { return &Error{Kind: ErrValidation, Msg: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Msg: msg} }
func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }

// hashPassword reports an over-long password as a validation error.
func hashPassword(plain string) (string, error) {
	hash, err := helpers.HashPassword(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", invalid(err.Error())
	}
	return hash, err
}
