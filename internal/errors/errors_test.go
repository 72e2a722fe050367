package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid JSON syntax",
				Err:     nil,
			},
			expected: "parsing: invalid JSON syntax",
		},
		{
			name: "merge error with sentinel",
			appError: &AppError{
				Type:    ErrorTypeMerge,
				Message: "deep merge",
				Err:     ErrMergeProducedEmptyResult,
			},
			expected: "merge: deep merge: merge produced an empty result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: &AppError{Type: ErrorTypeSession, Message: "test message"},
			target:   &AppError{Type: ErrorTypeSession, Message: "different message", Err: errors.New("some error")},
			expected: true,
		},
		{
			name:     "different type",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   &AppError{Type: ErrorTypeParsing, Message: "test message"},
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: &AppError{Type: ErrorTypeInput, Message: "test message"},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_SentinelThroughWrap(t *testing.T) {
	err := fmt.Errorf("preview: %w", NewSessionError("preview before compare", ErrInvalidTransition))
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeSession}))
	assert.False(t, errors.Is(err, ErrMergeProducedEmptyResult))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error with sentinel",
			err:      NewParsingError("JSON syntax error at offset 3", ErrInvalidJSON),
			expected: "JSON parsing error: JSON syntax error at offset 3",
		},
		{
			name:     "parsing error with cause",
			err:      NewParsingError("left document", errors.New("unexpected EOF")),
			expected: "JSON parsing error: left document: unexpected EOF",
		},
		{
			name:     "comparison error",
			err:      NewComparisonError("roots differ in shape", nil),
			expected: "Comparison error: roots differ in shape",
		},
		{
			name:     "merge error",
			err:      NewMergeError("merge produced nothing", ErrMergeProducedEmptyResult),
			expected: "Merge error: merge produced nothing",
		},
		{
			name:     "session error",
			err:      NewSessionError("apply requires a preview", ErrInvalidTransition),
			expected: "Session error: apply requires a preview",
		},
		{
			name:     "config error",
			err:      NewConfigError("unknown strategy", nil),
			expected: "Configuration error: unknown strategy",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - empty merge",
			err:      ErrMergeProducedEmptyResult,
			expected: "Error: The merge produced an empty result. Check the strategy and resolutions.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
