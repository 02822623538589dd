package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel every "missing" condition unwraps to.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when inserting a document whose id already exists.
	ErrConflict = errors.New("already exists")
)

// NotFoundError reports a missing topic, scenario or bookmark.
// Its message is safe to return to API clients.
type NotFoundError struct {
	Resource string // "Topic", "Bookmark"
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for resource/id.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ScenarioNotFoundError is the "helpful 404" of the process resolver:
// it carries the identifiers a client can pick from instead.
type ScenarioNotFoundError struct {
	Query     string
	Available []string
}

func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("Scenario %q not found.", e.Query)
}

func (e *ScenarioNotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports malformed or incomplete client input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
