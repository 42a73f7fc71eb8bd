package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnknownProvider", ErrUnknownProvider},
		{"ErrInvalidDescriptor", ErrInvalidDescriptor},
		{"ErrMissingClientID", ErrMissingClientID},
		{"ErrMissingClientConfig", ErrMissingClientConfig},
		{"ErrExchangeFailed", ErrExchangeFailed},
		{"ErrExchangeTimeout", ErrExchangeTimeout},
		{"ErrStateMismatch", ErrStateMismatch},
		{"ErrNoRefreshToken", ErrNoRefreshToken},
		{"ErrTokenRefreshFailed", ErrTokenRefreshFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestConfigError(t *testing.T) {
	err := fmt.Errorf("start: %w", &ConfigError{Key: "JIRA_CLIENT_ID", Err: ErrMissingClientID})

	assert.Contains(t, err.Error(), "Missing JIRA_CLIENT_ID")
	assert.True(t, errors.Is(err, ErrMissingClientID))

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "JIRA_CLIENT_ID", cfgErr.Key)
}

func TestExchangeError_Is(t *testing.T) {
	failed := NewExchangeError(ErrorKindExchangeFailed, 400, "invalid_grant")
	timeout := NewExchangeError(ErrorKindTimeout, 0, "deadline exceeded")

	assert.ErrorIs(t, failed, ErrExchangeFailed)
	assert.NotErrorIs(t, failed, ErrExchangeTimeout)

	// A timeout is a specialisation of a failed exchange.
	assert.ErrorIs(t, timeout, ErrExchangeFailed)
	assert.ErrorIs(t, timeout, ErrExchangeTimeout)

	wrapped := fmt.Errorf("exchange: %w", timeout)
	assert.ErrorIs(t, wrapped, ErrExchangeTimeout)
}

func TestExchangeError_Error(t *testing.T) {
	assert.Equal(t, "exchange_failed (status 401): invalid_client",
		NewExchangeError(ErrorKindExchangeFailed, 401, "invalid_client").Error())
	assert.Equal(t, "timeout: deadline exceeded",
		NewExchangeError(ErrorKindTimeout, 0, "deadline exceeded").Error())
}

func TestNewExchangeError_TruncatesDetail(t *testing.T) {
	err := NewExchangeError(ErrorKindExchangeFailed, 500, strings.Repeat("x", 2000))

	assert.Len(t, err.Detail, MaxErrorDetail)
	assert.True(t, strings.HasSuffix(err.Detail, "..."))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
