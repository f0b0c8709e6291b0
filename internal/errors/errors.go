// Package errors provides custom error types and utilities for snpeprep.
//
// This package provides error handling for the setup steps:
// - Configuration errors (SDK root missing or invalid)
// - Validation errors (bad command line values)
// - Not-found errors (SDK layout incomplete)
// - Tool errors (external converters and scripts)
// - Multi-error handling
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories for snpeprep operations
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("configuration error")
	ErrToolFailed    = errors.New("external tool failed")
)

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("configuration error in field '%s'", e.Field)
	}
	return ErrConfiguration.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrConfiguration)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, value, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// IsConfiguration checks if an error is configuration-related
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidInput)
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// IsValidation checks if an error is validation-related
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// NotFoundError represents a file or directory the SDK layout should contain
type NotFoundError struct {
	Path    string
	Message string
	Err     error
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s does not exist", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) Is(target error) bool {
	return errors.Is(target, ErrNotFound)
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(path, message string, err error) *NotFoundError {
	return &NotFoundError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ToolError represents an external tool that could not be run or exited non-zero
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	cmdline := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s exited with status %d", cmdline, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", cmdline, e.Err)
	}
	return fmt.Sprintf("%s failed", cmdline)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func (e *ToolError) Is(target error) bool {
	return errors.Is(target, ErrToolFailed)
}

// NewToolError creates a new tool error
func NewToolError(tool string, args []string, exitCode int, err error) *ToolError {
	return &ToolError{
		Tool:     tool,
		Args:     args,
		ExitCode: exitCode,
		Err:      err,
	}
}

// IsToolFailure checks if an error comes from an external tool run
func IsToolFailure(err error) bool {
	return errors.Is(err, ErrToolFailed)
}

// MultiError represents multiple errors that occurred together
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

func (e *MultiError) Is(target error) bool {
	for _, err := range e.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *MultiError) As(target any) bool {
	for _, err := range e.Errors {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}

// NewMultiError creates a new multi-error from a slice of errors
func NewMultiError(errs []error) *MultiError {
	var filteredErrors []error
	for _, err := range errs {
		if err != nil {
			filteredErrors = append(filteredErrors, err)
		}
	}
	return &MultiError{Errors: filteredErrors}
}

// Join creates a MultiError from multiple errors, filtering out nils
func Join(errs ...error) error {
	var nonNilErrors []error
	for _, err := range errs {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}

	if len(nonNilErrors) == 0 {
		return nil
	}
	if len(nonNilErrors) == 1 {
		return nonNilErrors[0]
	}

	return NewMultiError(nonNilErrors)
}
