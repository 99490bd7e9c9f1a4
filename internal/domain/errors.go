package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write hits a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)
