package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any NotFoundError via errors.Is
	ErrNotFound = errors.New("not found")
	// ErrValidation matches any ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
	// ErrPersistence matches any PersistenceError via errors.Is
	ErrPersistence = errors.New("persistence failed")
)

// NotFoundError reports an unknown notebook, session, cell or dataset
type NotFoundError struct {
	Kind string // "notebook", "session", "cell", "dataset"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a request that was rejected without side effects
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError reports a failed snapshot read or write
type PersistenceError struct {
	Op   string // "load", "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
