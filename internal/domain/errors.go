package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the classifier and its outer layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoCanonicalDate  = errors.New("no valid dates to compare")
	ErrEpisodeNotFound  = errors.New("episode not found in client episodes")
	ErrUnexpectedStatus = errors.New("unexpected episode status")
	ErrInvalidWindow    = errors.New("invalid month window")
)

// DateError reports that an episode has no date usable for ordering.
type DateError struct {
	EpisodeID string
	Err       error
}

// Error implements the error interface
func (e *DateError) Error() string {
	return fmt.Sprintf("episode %q: %v", e.EpisodeID, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// NewDateError creates a DateError for the given episode.
func NewDateError(episodeID string, err error) *DateError {
	return &DateError{EpisodeID: episodeID, Err: err}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ClassificationError is a hard failure raised while classifying one episode.
// It is distinct from an UndefinedReason, which is a legitimate outcome.
type ClassificationError struct {
	ClientID  string
	EpisodeID string
	Err       error
}

// Error implements the error interface
func (e *ClassificationError) Error() string {
	if e.ClientID == "" {
		return fmt.Sprintf("failed to classify episode %s: %v", e.EpisodeID, e.Err)
	}
	return fmt.Sprintf("failed to classify %s / %s: %v", e.ClientID, e.EpisodeID, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
