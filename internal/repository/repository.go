// Package repository implements pgx-backed persistence for users, groups
// and photo metadata.
package repository

import "errors"

// Sentinel errors translated by the service layer into API error kinds.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateLogin is returned when a login unique constraint fires.
	ErrDuplicateLogin = errors.New("login already taken")
	// ErrVersionConflict is returned when a conditional membership update
	// lost the race against a concurrent writer. Callers re-read and retry.
	ErrVersionConflict = errors.New("group version conflict")
)
