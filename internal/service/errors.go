package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the entity does not exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput covers rejected amounts, types and references.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned for blocked deletes and duplicate names.
	ErrConflict = errors.New("conflict")
	// ErrIntegrity marks a failed or mismatching derived-state write.
	ErrIntegrity = errors.New("data integrity error")
)

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// lookup translates gorm.ErrRecordNotFound into ErrNotFound for what.
func lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
