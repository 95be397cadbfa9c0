// Package errors holds the sentinels the table repos wrap, so the aggregate
// layer can map them to coded write errors without importing gorm.
package errors

import "errors"

var (
	// ErrNotFound means a row looked up by natural key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means a row is missing its parent id or has ix < 1.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict means a course slug is owned by another creator.
	ErrConflict = errors.New("conflict")
)
