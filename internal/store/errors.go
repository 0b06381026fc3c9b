package store

import (
	"errors"
	"fmt"

	"github.com/roach88/avwizard/internal/record"
)

// Kind categorizes store failures.
type Kind string

const (
	// KindUnavailable means the database could not be opened or migrated.
	KindUnavailable Kind = "STORAGE_UNAVAILABLE"

	// KindUnknownCollection means the operation named an undeclared collection.
	KindUnknownCollection Kind = "UNKNOWN_COLLECTION"

	// KindMissingID means the record had no usable "id" field.
	KindMissingID Kind = "MISSING_ID"

	// KindIO means the underlying database failed during an operation.
	KindIO Kind = "STORAGE_ERROR"
)

// Sentinels for errors.Is matching. Every *Error matches the sentinel of its Kind.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrMissingID          = errors.New("record id missing")
	ErrStorage            = errors.New("storage error")
)

// Error is returned by every Store operation that fails.
// It names the failing operation and collection so pages can show a useful banner.
type Error struct {
	Op         string
	Collection record.Collection
	Kind       Kind
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Kind)
	if e.Collection != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Collection, e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStorageUnavailable:
		return e.Kind == KindUnavailable
	case ErrUnknownCollection:
		return e.Kind == KindUnknownCollection
	case ErrMissingID:
		return e.Kind == KindMissingID
	case ErrStorage:
		return e.Kind == KindIO
	}
	return false
}

// IsUnknownCollection reports whether err is an unknown-collection failure.
func IsUnknownCollection(err error) bool {
	return errors.Is(err, ErrUnknownCollection)
}

// IsUnavailable reports whether err means the database could not be opened.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

func newError(op string, c record.Collection, kind Kind, err error) *Error {
	return &Error{Op: op, Collection: c, Kind: kind, Err: err}
}
