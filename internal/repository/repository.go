// Package repository defines storage interfaces for reports and users.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record collides with a unique field.
	ErrDuplicate = errors.New("record already exists")
)
