// Package pkg holds the small shared helpers every layer uses: domain errors
// and the JSON response writers.
//
// Services return the sentinel errors below (usually wrapped with
// fmt.Errorf("%w: ...")) and handlers map them to HTTP status codes:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")
)

// LocalizedError pairs a domain error with an i18n key. The response writer
// translates the key into the caller's language; errors.Is still matches Kind.
type LocalizedError struct {
	Kind   error
	Key    string
	Params map[string]string
}

func (e *LocalizedError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Key)
}

func (e *LocalizedError) Unwrap() error {
	return e.Kind
}

// Localized builds a LocalizedError.
func Localized(kind error, key string) error {
	return &LocalizedError{Kind: kind, Key: key}
}

// LocalizedWithParams builds a LocalizedError whose message has {{param}} placeholders.
func LocalizedWithParams(kind error, key string, params map[string]string) error {
	return &LocalizedError{Kind: kind, Key: key, Params: params}
}
