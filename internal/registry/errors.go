package registry

import "errors"

var (
	// ErrNotAuthorized is returned when the caller lacks the role required for a mutation.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidAction is returned for actions disallowed regardless of role, such as self-disable.
	ErrInvalidAction = errors.New("invalid action")
	// ErrNotExists is returned when the referenced account or zone has no record.
	ErrNotExists = errors.New("not exists")
	// ErrInvalidData is returned for malformed input.
	ErrInvalidData = errors.New("invalid data")
	// ErrNoneValue is returned when a required value is absent.
	ErrNoneValue = errors.New("none value")
)
