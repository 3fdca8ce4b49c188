// Package apperrors defines the closed set of error kinds the sync pipeline and
// the read API branch on.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindConfig      Kind = "config"
	KindUpstream    Kind = "upstream"
	KindPersistence Kind = "persistence"
	KindShape       Kind = "shape"
)

// Error is a tagged error. Source names the upstream service, the store
// operation or the config key involved.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return fmt.Sprintf("configuration error: %v", e.Err)
	case KindUpstream:
		return fmt.Sprintf("%s upstream error: %v", e.Source, e.Err)
	case KindPersistence:
		return fmt.Sprintf("persistence error (%s): %v", e.Source, e.Err)
	case KindShape:
		return fmt.Sprintf("unexpected data shape (%s): %v", e.Source, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Config reports a missing or invalid configuration value.
func Config(key string) error {
	return &Error{Kind: KindConfig, Source: key, Err: fmt.Errorf("%s environment variable is not set", key)}
}

// Configf reports an invalid configuration with a custom message.
func Configf(key, format string, args ...any) error {
	return &Error{Kind: KindConfig, Source: key, Err: fmt.Errorf(format, args...)}
}

// Upstream wraps a failure talking to an external API.
func Upstream(source string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Source: source, Err: err}
}

// Persistence wraps a document store failure.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindPersistence, Source: op, Err: err}
}

// Shape reports data that could not be interpreted.
func Shape(what string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindShape, Source: what, Err: err}
}

// KindOf returns the kind of the outermost tagged error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
