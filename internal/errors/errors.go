package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseError indicates a malformed generic signature
	ParseError ErrorCode = "PARSE_ERROR"
	// ResolutionIO indicates a loader failure during class lookup or an ancestor walk
	ResolutionIO ErrorCode = "RESOLUTION_IO"
	// InvariantViolation indicates a caller contract bug
	InvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	// ManifestInvalid indicates a module manifest that cannot be decoded
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// ConfigInvalid indicates an invalid configuration value
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StoreFailure indicates the history database failed
	StoreFailure ErrorCode = "STORE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
	// EditFile suggests editing an input file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Path        string        `json:"path,omitempty"`
}

// CompatError represents a modcompat error with code, message, and suggestions
type CompatError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a CompatError with the default fixes for its code.
func New(code ErrorCode, message string, cause error) *CompatError {
	return &CompatError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *CompatError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *CompatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CompatError) Unwrap() error {
	return e.cause
}

// Is matches another CompatError by code, so sentinel values can be compared
// with errors.Is.
func (e *CompatError) Is(target error) bool {
	t, ok := target.(*CompatError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// WithDetails adds details to the error
func (e *CompatError) WithDetails(details interface{}) *CompatError {
	e.Details = details
	return e
}

// Code returns the code of the first CompatError in err's chain, or
// InternalError when there is none.
func Code(err error) ErrorCode {
	var ce *CompatError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// HasCode reports whether any CompatError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if ce, ok := err.(*CompatError); ok && ce.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ResolutionIO: {
		{
			Type:        RunCommand,
			Command:     "modcompat compare --platform-path <dir>",
			Description: "Make every module on the ancestor chain available to the registry",
		},
	},
	ManifestInvalid: {
		{
			Type:        EditFile,
			Description: "Fix the module manifest; access, modifier and descriptor values are validated",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditFile,
			Path:        ".modcompat/config.json",
			Description: "Correct the configuration value",
		},
	},
	StoreFailure: {
		{
			Type:        RunCommand,
			Command:     "MODCOMPAT_STORE_ENABLED=false modcompat compare OLD NEW",
			Description: "Run without recording history",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
