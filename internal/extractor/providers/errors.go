package providers

import (
	"errors"
	"fmt"
)

// Kind is the classified category of an extraction failure. It decides retry
// eligibility and is surfaced in statistics and exports.
type Kind string

const (
	KindCaptcha          Kind = "captcha"
	KindNotFound         Kind = "not_found"
	KindAccessRestricted Kind = "access_restricted"
	KindRateLimit        Kind = "rate_limit"
	KindUnknown          Kind = "unknown"
)

// Error is a classified extraction failure. Providers return *Error so the
// worker never has to guess a category from error text.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a classified extraction error.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Classify returns the kind of an extraction failure. Errors that are not
// *Error (network faults, decoding errors) are classified as unknown, which
// keeps them retryable.
func Classify(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether an error of the given kind is worth another
// attempt. not_found and access_restricted never change on retry.
func Retryable(kind Kind) bool {
	return kind != KindNotFound && kind != KindAccessRestricted
}
