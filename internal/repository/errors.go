package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNoSpotsAvailable is returned when a conditional spot reservation matches nothing.
	ErrNoSpotsAvailable = errors.New("no spots available")

	// ErrConflict is returned when a conditional write finds the entity in an unexpected state.
	ErrConflict = errors.New("entity modified concurrently")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key")
)
