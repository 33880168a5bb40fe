package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies replay errors by how the engine must react.
type ErrorCategory string

const (
	// ErrCategoryContract marks programming-contract violations, e.g.
	// applying a pattern that never matched. Always fatal for the run.
	ErrCategoryContract ErrorCategory = "contract"
	// ErrCategoryUnsupported marks circumstances the engine recognizes but
	// does not handle. Aborts the current event, not the session.
	ErrCategoryUnsupported ErrorCategory = "unsupported"
	// ErrCategoryUnreachable marks algorithm invariant failures (defects).
	ErrCategoryUnreachable ErrorCategory = "unreachable"
	// ErrCategoryTransport marks device I/O failures.
	ErrCategoryTransport ErrorCategory = "transport"
	// ErrCategoryConfig marks invalid configuration.
	ErrCategoryConfig ErrorCategory = "config"
)

// ReplayError is a structured error with a category and machine code.
type ReplayError struct {
	Category ErrorCategory
	Code     string                 // machine-readable: apply_before_match, scroll_exhausted, ...
	Message  string                 // human-readable message
	Details  map[string]interface{} // extra context for diagnostics
	Cause    error                  // underlying error, if any
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap supports errors.Is/errors.As chains.
func (e *ReplayError) Unwrap() error {
	return e.Cause
}

// Is treats two ReplayErrors with the same code as equal, so the
// predefined sentinels below work with errors.Is after WithDetails etc.
func (e *ReplayError) Is(target error) bool {
	var t *ReplayError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy carrying the given cause.
func (e *ReplayError) WithCause(cause error) *ReplayError {
	c := *e
	c.Cause = cause
	return &c
}

// WithMessage returns a copy with a more specific message.
func (e *ReplayError) WithMessage(format string, v ...interface{}) *ReplayError {
	c := *e
	c.Message = fmt.Sprintf(format, v...)
	return &c
}

// WithDetails returns a copy with the given details merged in.
func (e *ReplayError) WithDetails(details map[string]interface{}) *ReplayError {
	merged := make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	c := *e
	c.Details = merged
	return &c
}

// Predefined errors.
var (
	// Contract violations, always fatal.
	ErrApplyBeforeMatch = &ReplayError{
		Category: ErrCategoryContract,
		Code:     "apply_before_match",
		Message:  "pattern applied without a successful match",
	}
	ErrEmptySegmentRoots = &ReplayError{
		Category: ErrCategoryContract,
		Code:     "empty_segment_roots",
		Message:  "segment constructed with no root views",
	}
	ErrViewWithoutIdentity = &ReplayError{
		Category: ErrCategoryContract,
		Code:     "view_without_identity",
		Message:  "view has no text, resource id, or description to select by",
	}

	// Unsupported circumstances (abort the event, keep the session).
	ErrBothAxesScrollable = &ReplayError{
		Category: ErrCategoryUnsupported,
		Code:     "both_axes_scrollable",
		Message:  "view has both horizontally and vertically scrollable ancestors",
	}
	ErrScrollExhausted = &ReplayError{
		Category: ErrCategoryUnsupported,
		Code:     "scroll_exhausted",
		Message:  "target did not appear after exhausting scroll attempts",
	}
	ErrNoTabHost = &ReplayError{
		Category: ErrCategoryUnsupported,
		Code:     "no_tab_host",
		Message:  "no tab host found on playee",
	}
	ErrMultipleTabHosts = &ReplayError{
		Category: ErrCategoryUnsupported,
		Code:     "multiple_tab_hosts",
		Message:  "multiple candidate tab hosts found on playee",
	}
	ErrNoPageContainsTarget = &ReplayError{
		Category: ErrCategoryUnsupported,
		Code:     "no_page_contains_target",
		Message:  "no pager page contains the target view",
	}

	// Algorithm invariant failures (defects).
	ErrRuleUndecided = &ReplayError{
		Category: ErrCategoryUnreachable,
		Code:     "rule_cascade_undecided",
		Message:  "segmentation rule cascade reached no decision",
	}
	ErrSeparatorNeighbors = &ReplayError{
		Category: ErrCategoryUnreachable,
		Code:     "separator_neighbors_missing",
		Message:  "separator claims neighbor views that cannot be found",
	}

	// Transport.
	ErrDeviceUnreachable = &ReplayError{
		Category: ErrCategoryTransport,
		Code:     "device_unreachable",
		Message:  "could not reach automation server",
	}
	ErrTransport = &ReplayError{
		Category: ErrCategoryTransport,
		Code:     "transport",
		Message:  "device transport failure",
	}

	// Config.
	ErrInvalidConfig = &ReplayError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ReplayError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
)

// NewReplayError creates a ReplayError from scratch.
func NewReplayError(cat ErrorCategory, code, message string) *ReplayError {
	return &ReplayError{Category: cat, Code: code, Message: message}
}

// CategoryOf returns the category of err, or "" for plain errors.
func CategoryOf(err error) ErrorCategory {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}

// IsUnsupported reports whether err is an unsupported-circumstance error.
func IsUnsupported(err error) bool {
	return CategoryOf(err) == ErrCategoryUnsupported
}
