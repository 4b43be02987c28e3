package services

import (
	"errors"
	"strings"

	apierrors "asiacup/internal/errors"
)

// Dashboard service errors
var (
	ErrDatasetNotLoaded  = errors.New("dataset not loaded")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPanelNotFound     = errors.New("panel not found")
)

// SelectionError lists the request fields that failed validation. It
// matches ErrInvalidSelection with errors.Is.
type SelectionError struct {
	Fields []apierrors.ValidationError
}

func (e *SelectionError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return ErrInvalidSelection.Error() + ": " + strings.Join(parts, "; ")
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}
