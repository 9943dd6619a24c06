package errors

import (
	"fmt"
)

// ErrNotRepository is returned when the backup directory hasn't been
// initialized as a git repository.
var ErrNotRepository = New("backup directory is not a git repository")

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// InvalidPathError represents a tracked path that can't be mirrored safely.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (err InvalidPathError) Error() string {
	return fmt.Sprintf("invalid tracked path %q: %s", err.Path, err.Reason)
}
