package errors

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/multierr"
)

// AppError is the unified error type for seqkit.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so package
// level sentinels match any error built from the same constructor.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Common Error Constructors ---

// InvalidArgument creates an AppError for an operator argument that cannot be used.
func InvalidArgument(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid argument %s: %s", name, reason),
		Details: map[string]any{"argument": name},
	}
}

// StaleHandle creates an AppError for a pipeline handle whose epoch has moved on.
func StaleHandle(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeStaleHandle,
		Message: "pipeline handle was already consumed; use the handle returned by the last call",
		Details: map[string]any{"operation": operation},
	}
}

// ConcurrentAdvance creates an AppError for overlapping calls on one iterator.
func ConcurrentAdvance() *AppError {
	return &AppError{Code: ErrCodeConcurrentAdvance, Message: "iterator is already being advanced"}
}

// IteratorClosed creates an AppError for use of an iterator after Close.
func IteratorClosed() *AppError {
	return &AppError{Code: ErrCodeIteratorClosed, Message: "iterator is closed"}
}

// NotOrdered creates an AppError for ThenBy on an unordered pipeline.
func NotOrdered() *AppError {
	return &AppError{Code: ErrCodeNotOrdered, Message: "ThenBy requires a pipeline returned by OrderBy or ThenBy"}
}

// ViewReleased creates an AppError for a read through a released view.
func ViewReleased() *AppError {
	return &AppError{Code: ErrCodeViewReleased, Message: "view read after its owner was released"}
}

// Canceled creates an AppError recording a cancellation outcome.
func Canceled(cause error) *AppError {
	if cause == nil {
		cause = context.Canceled
	}
	return &AppError{Code: ErrCodeCanceled, Message: "enumeration canceled", Cause: cause}
}

// Internal creates an AppError for a broken library invariant.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Aggregation ---

// Aggregate combines every non-nil error into one. Nil errors are dropped,
// a single error is returned unchanged, and nested aggregates are flattened.
func Aggregate(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		flat = append(flat, Errors(err)...)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &AppError{
		Code:    ErrCodeAggregate,
		Message: fmt.Sprintf("%d errors occurred", len(flat)),
		Details: map[string]any{"count": len(flat)},
		Cause:   multierr.Combine(flat...),
	}
}

// Errors returns the individual errors held by an aggregate, or err itself.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	if app, ok := err.(*AppError); ok && app.Code == ErrCodeAggregate {
		return multierr.Errors(app.Cause)
	}
	if errs := multierr.Errors(err); len(errs) > 1 {
		return errs
	}
	return []error{err}
}

// IsCanceled reports whether err records a cancellation outcome.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, &AppError{Code: ErrCodeCanceled})
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As, re-exported so callers need a single import.
func As(err error, target any) bool { return stderrors.As(err, target) }
