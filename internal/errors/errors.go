package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify two documents, one of them may be '-' for stdin")
	ErrInvalidFilePath = errors.New("invalid file path")

	ErrIncomparableTopLevelTypes = errors.New("top-level values are not both objects or both arrays")
	ErrMergeProducedEmptyResult  = errors.New("merge produced an empty result")
	ErrInvalidCustomResolution   = errors.New("custom resolution is not valid JSON, using it as a string")
	ErrInvalidStrategy           = errors.New("invalid merge strategy")
	ErrInvalidResolution         = errors.New("invalid resolution")
	ErrInvalidTransition         = errors.New("operation not allowed in the current session state")
	ErrScopeNotFound             = errors.New("scope path not found in document")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeComparison ErrorType = "comparison"
	ErrorTypeMerge      ErrorType = "merge"
	ErrorTypeSession    ErrorType = "session"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewComparisonError creates a new error raised while comparing documents
func NewComparisonError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeComparison,
		Message: message,
		Err:     err,
	}
}

// NewMergeError creates a new error raised by the merge engine
func NewMergeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMerge,
		Message: message,
		Err:     err,
	}
}

// NewSessionError creates a new error for a rejected session action
func NewSessionError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSession,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			if appErr.Err != nil && !errors.Is(appErr.Err, ErrInvalidJSON) {
				return fmt.Sprintf("JSON parsing error: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeComparison:
			return fmt.Sprintf("Comparison error: %s", appErr.Message)
		case ErrorTypeMerge:
			return fmt.Sprintf("Merge error: %s", appErr.Message)
		case ErrorTypeSession:
			return fmt.Sprintf("Session error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify two JSON documents."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrMergeProducedEmptyResult) {
		return "Error: The merge produced an empty result. Check the strategy and resolutions."
	}
	if errors.Is(err, ErrInvalidStrategy) {
		return "Error: Unknown merge strategy. Use deep, shallow or replace."
	}
	if errors.Is(err, ErrInvalidTransition) {
		return "Error: That action is not available yet. Compare the documents first."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
