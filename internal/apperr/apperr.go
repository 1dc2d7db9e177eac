// Package apperr classifies failures so the HTTP boundary can turn them
// into a {success:false} payload with a matching status code.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindInvalidID     Kind = "invalid_id"
	KindNotFound      Kind = "not_found"
	KindNoOp          Kind = "no_op"
	KindInconsistency Kind = "inconsistency"
	KindTransport     Kind = "transport"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input for validation failures.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func InvalidID(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidID, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NoOp(format string, args ...any) *Error {
	return &Error{Kind: KindNoOp, Message: fmt.Sprintf(format, args...)}
}

func Inconsistency(format string, args ...any) *Error {
	return &Error{Kind: KindInconsistency, Message: fmt.Sprintf(format, args...)}
}

func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Message: "Database unavailable", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Database error", Err: err}
}

// Store classifies a driver error. Connectivity and deadline failures become
// transport errors, anything else is internal.
func Store(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return Transport(err)
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message. Unclassified errors never
// leak their text.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidID:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNoOp:
		return http.StatusConflict
	case KindTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
