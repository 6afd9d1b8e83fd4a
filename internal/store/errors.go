package store

import "errors"

// Sentinel errors returned by collections. The service layer translates
// these into coded domain errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a record with the same ID already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrIndexConflict is returned when a unique index value is already taken.
	ErrIndexConflict = errors.New("unique index conflict")
)
