// Package apierr defines the error taxonomy shared by the external API
// clients.
//
// Every failure crossing a component boundary is one of these types, so
// callers can choose a policy (abort the cycle, skip one identifier, start a
// cool-down) with errors.As instead of string matching.
package apierr

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or unusable local configuration, such as an
// unset credential. It is permanent until the configuration changes; callers
// must not retry within a cycle.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Msg
}

// AuthError reports a failed token request or refresh. Transient: the next
// poll cycle retries from scratch.
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth error (status %d): %s", e.Status, e.Msg)
	}
	return "auth error: " + e.Msg
}

// TransportError reports a non-2xx HTTP status or a connection-level
// failure. ConnectionLevel distinguishes failures that never produced an
// HTTP status; those trigger the detail source's cool-down window.
type TransportError struct {
	Status          int
	ConnectionLevel bool
	Msg             string
	Err             error
}

func (e *TransportError) Error() string {
	if e.ConnectionLevel {
		return "transport error: " + e.Msg
	}
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a malformed response body. Truncated marks the single
// recoverable variant: a body cut short mid-stream, worth exactly one
// retry of the whole request.
type ParseError struct {
	Msg       string
	Truncated bool
	Err       error
}

func (e *ParseError) Error() string {
	if e.Truncated {
		return "parse error (truncated body): " + e.Msg
	}
	return "parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError reports an empty result set for an identifier. This is
// "no data", not a failure to escalate or retry specially.
type NotFoundError struct {
	Ident string
}

func (e *NotFoundError) Error() string {
	return "no data for ident " + e.Ident
}

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsTransport reports whether err is a TransportError, returning it for
// inspection of the status and connection-level flag.
func IsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsTruncated reports whether err is the truncated-body parse failure.
func IsTruncated(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Truncated
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
