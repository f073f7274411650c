//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package apperrors defines the error taxonomy shared by the repositories,
// services and HTTP API.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	KindValidation    Kind = "VALIDATION_FAILED"
	KindQuery         Kind = "QUERY_FAILED"
	KindDirectory     Kind = "IDENTITY_DIRECTORY_FAILED"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindForbidden     Kind = "FORBIDDEN"
	KindInternal      Kind = "INTERNAL"
)

// Sentinels for errors.Is. Any AppError of the same Kind matches.
var (
	ErrNotFound      = New(KindNotFound, "not found")
	ErrAlreadyExists = New(KindAlreadyExists, "already exists")
	ErrValidation    = New(KindValidation, "validation failed")
	ErrQuery         = New(KindQuery, "query failed")
	ErrDirectory     = New(KindDirectory, "identity directory request failed")
	ErrUnauthorized  = New(KindUnauthorized, "not authenticated")
	ErrForbidden     = New(KindForbidden, "access denied")
)

// AppError is an error with a Kind and a caller-facing message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an AppError.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError with a cause.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Error returns the message, followed by the cause when present. Callers
// show this string verbatim.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same Kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// WithMessage returns a copy of e with a different message.
func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithError returns a copy of e wrapping err.
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// StatusCode maps the Kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindDirectory:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NotFound reports that an entity does not exist, e.g. "CDS not found".
func NotFound(entity string) *AppError {
	return ErrNotFound.WithMessage(entity + " not found")
}

// Validation reports invalid caller input.
func Validation(message string) *AppError {
	return ErrValidation.WithMessage(message)
}

// QueryFailed wraps a store failure.
func QueryFailed(message string, err error) *AppError {
	return Wrap(err, KindQuery, message)
}

// DirectoryFailed wraps an identity directory failure.
func DirectoryFailed(message string, err error) *AppError {
	return Wrap(err, KindDirectory, message)
}

// KindOf returns the Kind of the first AppError in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From returns err as an AppError, wrapping foreign errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, KindInternal, "internal error")
}
