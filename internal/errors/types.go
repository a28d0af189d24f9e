// Package errors provides the structured error taxonomy for modkit.
//
// Every failure surfaced by the dispatch tree, relationship resolver, policy
// engine, and navigation coordinator is a *ModkitError carrying a category, a
// stable code, and optional context. Callers match errors by code through the
// predicate helpers rather than by message text.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeDispatch   ErrorType = "dispatch"
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypePolicy     ErrorType = "policy"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Stable error codes matched by the predicate helpers below.
const (
	CodeInvalidActionPath = "invalid_action_path"
	CodeDuplicateAction   = "duplicate_action"
	CodeActionNotFound    = "action_not_found"
	CodeEmptyHistory      = "empty_history"
	CodeAlreadyResolved   = "already_resolved"
	CodeDisposed          = "disposed"
	CodePolicyViolation   = "policy_violation"
	CodeConfigInvalid     = "config_invalid"
)

// ModkitError is a structured error type with context.
type ModkitError struct {
	Type       ErrorType
	Code       string
	Message    string
	Cause      error
	Context    map[string]interface{}
	Path       string // action path or unit name the error relates to
	Suggestion string // closest known alternative, when one exists
}

// Error implements the error interface.
func (e *ModkitError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, "path:"+e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Suggestion != "" {
		result += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ModkitError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *ModkitError) Is(target error) bool {
	var t *ModkitError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ModkitError) WithContext(key string, value interface{}) *ModkitError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the action path or unit name the error relates to.
func (e *ModkitError) WithPath(path string) *ModkitError {
	e.Path = path

	return e
}

// WithSuggestion records the closest known alternative.
func (e *ModkitError) WithSuggestion(suggestion string) *ModkitError {
	e.Suggestion = suggestion

	return e
}

// Error creation functions

// NewInvalidActionPath reports a malformed or empty action path.
func NewInvalidActionPath(path string) *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeDispatch,
		Code:    CodeInvalidActionPath,
		Message: "action path is empty or malformed",
		Path:    path,
	}
}

// NewDuplicateAction reports re-registration of an exact action path.
func NewDuplicateAction(path string) *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeDispatch,
		Code:    CodeDuplicateAction,
		Message: "a handler is already registered for this action",
		Path:    path,
	}
}

// NewActionNotFound reports an unregistered path segment. The suggestion is
// the registered sibling closest by edit distance, or empty when the failing
// node has no children.
func NewActionNotFound(path, segment, suggestion string) *ModkitError {
	err := &ModkitError{
		Type:       ErrorTypeDispatch,
		Code:       CodeActionNotFound,
		Message:    fmt.Sprintf("no action registered under segment %q", segment),
		Path:       path,
		Suggestion: suggestion,
	}

	return err.WithContext("segment", segment)
}

// NewEmptyHistory reports back-navigation against an empty history stack.
func NewEmptyHistory() *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeNavigation,
		Code:    CodeEmptyHistory,
		Message: "navigation history is empty",
	}
}

// NewAlreadyResolved reports a double resolution of a pending transition.
// This is a programmer error and should never occur under correct use.
func NewAlreadyResolved(unit string) *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeNavigation,
		Code:    CodeAlreadyResolved,
		Message: "transition completion was already resolved",
		Path:    unit,
	}
}

// NewDisposed reports an operation against a disposed coordinator.
func NewDisposed(operation string) *ModkitError {
	err := &ModkitError{
		Type:    ErrorTypeNavigation,
		Code:    CodeDisposed,
		Message: "navigation coordinator has been disposed",
	}

	return err.WithContext("operation", operation)
}

// NewPolicyViolation converts a denied authorization decision into an error
// for callers that treat denial as fatal.
func NewPolicyViolation(path, from, to, reason string) *ModkitError {
	err := &ModkitError{
		Type:    ErrorTypePolicy,
		Code:    CodePolicyViolation,
		Message: fmt.Sprintf("communication from %q to %q denied", from, to),
		Path:    path,
	}
	if reason != "" {
		err = err.WithContext("reason", reason)
	}

	return err
}

// NewConfigError reports an invalid configuration value.
func NewConfigError(message string, cause error) *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeConfig,
		Code:    CodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError reports an internal invariant violation.
func NewInternalError(message string, cause error) *ModkitError {
	return &ModkitError{
		Type:    ErrorTypeInternal,
		Code:    "internal_error",
		Message: message,
		Cause:   cause,
	}
}

// Predicate helpers

func isCode(err error, code string) bool {
	var me *ModkitError
	if errors.As(err, &me) {
		return me.Code == code
	}

	return false
}

// IsInvalidActionPath reports whether err is an invalid action path error.
func IsInvalidActionPath(err error) bool { return isCode(err, CodeInvalidActionPath) }

// IsDuplicateAction reports whether err is a duplicate registration error.
func IsDuplicateAction(err error) bool { return isCode(err, CodeDuplicateAction) }

// IsActionNotFound reports whether err is an unknown action error.
func IsActionNotFound(err error) bool { return isCode(err, CodeActionNotFound) }

// IsEmptyHistory reports whether err is an empty history error.
func IsEmptyHistory(err error) bool { return isCode(err, CodeEmptyHistory) }

// IsAlreadyResolved reports whether err is a double resolution error.
func IsAlreadyResolved(err error) bool { return isCode(err, CodeAlreadyResolved) }

// IsDisposed reports whether err is a disposed coordinator error.
func IsDisposed(err error) bool { return isCode(err, CodeDisposed) }

// IsPolicyViolation reports whether err is a policy denial error.
func IsPolicyViolation(err error) bool { return isCode(err, CodePolicyViolation) }

// Suggestion extracts the suggested alternative from an action not found
// error, or "" when there is none.
func Suggestion(err error) string {
	var me *ModkitError
	if errors.As(err, &me) {
		return me.Suggestion
	}

	return ""
}
