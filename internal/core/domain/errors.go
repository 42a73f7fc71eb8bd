package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Provider Errors.

	// ErrUnknownProvider indicates no descriptor is registered under the name.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidDescriptor indicates a malformed provider definition.
	// This is a programmer error and fails registry construction.
	ErrInvalidDescriptor = errors.New("invalid provider descriptor")

	// ErrMissingClientID indicates the provider's client id is not configured.
	ErrMissingClientID = errors.New("missing client id")

	// ErrMissingClientConfig indicates the client id or secret is not configured.
	ErrMissingClientConfig = errors.New("missing client configuration")

	// Exchange Errors.

	// ErrExchangeFailed indicates the token endpoint did not yield a usable token.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrExchangeTimeout indicates the token endpoint exceeded the deadline.
	// Errors wrapping it also match ErrExchangeFailed.
	ErrExchangeTimeout = errors.New("token exchange timed out")

	// ErrStateMismatch indicates the anti-forgery state check failed.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrNoRefreshToken indicates the stored record cannot be refreshed.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrTokenRefreshFailed indicates token refresh operation failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")
)

// ErrorKind classifies a callback failure.
// The string value is the reason reported in the error redirect.
type ErrorKind string

// Callback failure kinds.
const (
	ErrorKindMissingClientConfig ErrorKind = "missing_client_config"
	ErrorKindMissingCode         ErrorKind = "missing_code"
	ErrorKindProviderDenied      ErrorKind = "provider_denied"
	ErrorKindStateMismatch       ErrorKind = "state_mismatch"
	ErrorKindExchangeFailed      ErrorKind = "exchange_failed"
	ErrorKindTimeout             ErrorKind = "timeout"
	ErrorKindUnknownProvider     ErrorKind = "unknown_provider"
	ErrorKindStoreFailed         ErrorKind = "store_failed"
)

// MaxErrorDetail bounds the length of error detail strings.
const MaxErrorDetail = 512

// ConfigError reports a missing configuration value by key.
type ConfigError struct {
	// Key is the configuration key, e.g. "JIRA_CLIENT_ID".
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return "Missing " + e.Key
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExchangeError describes a failed token endpoint call.
type ExchangeError struct {
	// Kind is ErrorKindExchangeFailed or ErrorKindTimeout.
	Kind ErrorKind
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Detail is a bounded human-readable description.
	Detail string
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches ErrExchangeFailed for every kind and ErrExchangeTimeout for timeouts.
func (e *ExchangeError) Is(target error) bool {
	switch target {
	case ErrExchangeFailed:
		return true
	case ErrExchangeTimeout:
		return e.Kind == ErrorKindTimeout
	}
	return false
}

// NewExchangeError builds an ExchangeError with its detail truncated to MaxErrorDetail.
func NewExchangeError(kind ErrorKind, status int, detail string) *ExchangeError {
	return &ExchangeError{Kind: kind, StatusCode: status, Detail: Truncate(detail, MaxErrorDetail)}
}

// Truncate shortens s to at most n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const marker = "..."
	if n <= len(marker) {
		return s[:n]
	}
	return s[:n-len(marker)] + marker
}
