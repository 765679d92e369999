package content

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error categories. Every error recorded in a sync report belongs to one.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrIO         = errors.New("i/o failure")
	ErrTransport  = errors.New("transport failure")
)

// Category names used in reports and the journal.
const (
	CategoryNotFound   = "not_found"
	CategoryConflict   = "conflict"
	CategoryValidation = "validation"
	CategoryIO         = "io"
	CategoryTransport  = "transport"
)

// Category classifies err into one of the category names. Errors carrying
// no category are treated as I/O failures when they come from the
// filesystem and as transport failures otherwise.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrConflict):
		return CategoryConflict
	case errors.Is(err, ErrValidation):
		return CategoryValidation
	case errors.Is(err, ErrIO):
		return CategoryIO
	case errors.Is(err, ErrTransport):
		return CategoryTransport
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return CategoryIO
	}
	return CategoryTransport
}

// ItemError wraps a failure with the identifying fields of the item it
// happened to.
type ItemError struct {
	Op    string
	Kind  Kind
	ID    string
	Title string
	Path  string
	Err   error
}

func (e *ItemError) Error() string {
	name := e.Path
	if name == "" {
		name = e.ID
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, name, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// SlugMismatchError reports that the remote will not assign the identifier
// the local file is named after.
type SlugMismatchError struct {
	Title     string
	Predicted string
	LocalKey  string
}

func (e *SlugMismatchError) Error() string {
	return fmt.Sprintf("title %q will be assigned identifier %q, but the file is named %q; rename the file or allow renaming",
		e.Title, e.Predicted, e.LocalKey)
}

func (e *SlugMismatchError) Is(target error) bool { return target == ErrConflict }

// SubmissionsError reports that an item already has learner submissions and
// must not be modified.
type SubmissionsError struct {
	ID string
}

func (e *SubmissionsError) Error() string {
	return fmt.Sprintf("item %s has submissions", e.ID)
}

func (e *SubmissionsError) Is(target error) bool { return target == ErrConflict }

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
