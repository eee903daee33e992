package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOracleUnavailable covers network, auth, timeout and malformed-response failures.
	ErrOracleUnavailable = errors.New("classification oracle unavailable")
	// ErrOracleRateLimited is returned when the provider throttles the caller.
	ErrOracleRateLimited = errors.New("classification oracle rate limited")
	// ErrLabelMismatch marks a completion that names no known stage.
	ErrLabelMismatch = errors.New("oracle label does not match any stage")
	// ErrEmptyText rejects blank post text before a prompt is built.
	ErrEmptyText = errors.New("post text is empty")
	// ErrInvalidPost rejects structurally broken input records.
	ErrInvalidPost = errors.New("invalid post")
	// ErrInvalidQuery rejects out-of-range aggregation parameters.
	ErrInvalidQuery = errors.New("invalid pain point query")
)

// ConfigError reports a fatal configuration problem such as a broken taxonomy.
type ConfigError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "config"
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
