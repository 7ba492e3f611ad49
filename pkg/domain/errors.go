package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("record not found")

// NotFoundError is returned when no record matches the requested identity.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
