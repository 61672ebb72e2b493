package domain

import "errors"

var (
	// ErrNotFound is returned when a record lookup by id matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail indicates a user write collides with the unique
	// email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrMissingReference indicates an activity or leaderboard entry
	// references a user or workout that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)
