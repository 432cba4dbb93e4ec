package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Kind classifies a pipeline failure. Retry decisions and user-facing
// messages key off the kind, never off the underlying error text.
type Kind string

const (
	// KindValidation marks input that failed a nickname rule. Never retried.
	KindValidation Kind = "validation"
	// KindNetwork marks timeouts and transport failures. Retryable.
	KindNetwork Kind = "network"
	// KindDatabase marks store failures other than duplicates. Retryable.
	KindDatabase Kind = "database"
	// KindDuplicate marks a unique-constraint violation. The losing writer
	// of a claim race must not retry.
	KindDuplicate Kind = "duplicate"
	// KindNotFound marks an absent record. Absence is valid data, not a
	// transient fault, so it is never retried.
	KindNotFound Kind = "not_found"
	// KindRateLimited marks a rejected admission. Carries a retry-after
	// hint but is never retried automatically.
	KindRateLimited Kind = "rate_limited"
	// KindUnknown is the default for unclassified failures. Never retried.
	KindUnknown Kind = "unknown"
)

// Retryable reports whether failures of this kind are transient enough to
// retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindDatabase:
		return true
	default:
		return false
	}
}

// Error is the one error type the pipeline surfaces. Message is stable and
// safe to show users; Err carries the underlying cause for logs only.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "unknown error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an Error of the given kind with a stable message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind wrapping the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// RateLimited returns the admission-rejected error with its retry-after
// hint. The hint rounds up to whole seconds so the surfaced message never
// says "retry in 0s".
func RateLimited(retryAfter time.Duration) *Error {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return &Error{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("too many checks, retry in %ds", secs),
		RetryAfter: retryAfter,
	}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr != nil && appErr.Kind == kind
}

// IsRetryable reports whether err should be retried. Errors that never
// passed through Classify carry no kind and are not retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var appErr *Error
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Kind.Retryable()
	}
	return false
}
