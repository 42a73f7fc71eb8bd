package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackState_IsTerminal(t *testing.T) {
	assert.False(t, CallbackReceived.IsTerminal())
	assert.False(t, CallbackValidated.IsTerminal())
	assert.False(t, CallbackExchanging.IsTerminal())
	assert.True(t, CallbackStored.IsTerminal())
	assert.True(t, CallbackFailed.IsTerminal())
}

func TestCallbackResult_Success(t *testing.T) {
	result := Success("notion", TokenRecord{AccessToken: "a"})

	assert.True(t, result.Succeeded())
	assert.Equal(t, "notion", result.Provider)
	assert.Equal(t, "a", result.Token.AccessToken)
	assert.Empty(t, result.Reason())
}

func TestCallbackResult_Reason(t *testing.T) {
	tests := []struct {
		name   string
		result CallbackResult
		want   string
	}{
		{"missing code", Failure("foo", ErrorKindMissingCode, ""), "missing_code"},
		{"provider denied uses provider error", Failure("foo", ErrorKindProviderDenied, "access_denied"), "access_denied"},
		{"provider denied without detail", Failure("foo", ErrorKindProviderDenied, ""), "provider_denied"},
		{"exchange failed", Failure("foo", ErrorKindExchangeFailed, "invalid_grant"), "exchange_failed"},
		{"timeout", Failure("foo", ErrorKindTimeout, "deadline"), "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.result.Succeeded())
			assert.Equal(t, tt.want, tt.result.Reason())
		})
	}
}
