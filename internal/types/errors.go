package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingVariable matches any *MissingVariableError via errors.Is
	ErrMissingVariable = errors.New("missing variable")

	// ErrInvalidURI is returned when a URL is not a valid absolute URI after substitution
	ErrInvalidURI = errors.New("invalid URI")

	// ErrOperationNotFound is returned when no operation carries the requested operationId
	ErrOperationNotFound = errors.New("operation not found")

	// ErrFileNotFound is returned when an @file body reference does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidDocument is returned for unusable OpenAPI sources or documents
	ErrInvalidDocument = errors.New("invalid OpenAPI document")
)

// MissingVariableError lists every placeholder that could not be resolved
type MissingVariableError struct {
	Names []string
}

// NewMissingVariableError deduplicates names case-insensitively, keeping the
// first spelling seen.
func NewMissingVariableError(names ...string) *MissingVariableError {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, name)
	}
	return &MissingVariableError{Names: unique}
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variables: %s", strings.Join(e.Names, ", "))
}

// Is makes errors.Is(err, ErrMissingVariable) succeed
func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}
