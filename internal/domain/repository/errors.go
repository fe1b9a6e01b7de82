package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict means a conditional write matched no row.
	ErrConflict = errors.New("conflict")
	// ErrConstraint means a value was rejected by a column check or range.
	ErrConstraint = errors.New("constraint violation")
)
