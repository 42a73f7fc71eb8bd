package domain

import (
	"time"
)

// CallbackState is a step of the callback state machine.
type CallbackState string

// Callback states. Stored and Failed are terminal.
const (
	CallbackReceived   CallbackState = "received"
	CallbackValidated  CallbackState = "validated"
	CallbackExchanging CallbackState = "exchanging"
	CallbackStored     CallbackState = "stored"
	CallbackFailed     CallbackState = "failed"
)

// IsTerminal reports whether no further transition follows s.
func (s CallbackState) IsTerminal() bool {
	return s == CallbackStored || s == CallbackFailed
}

// CallbackParams are the query parameters a provider delivers to the callback.
type CallbackParams struct {
	Code             string
	Error            string
	ErrorDescription string
	State            string
}

// CallbackResult is the transient outcome of one callback invocation. It is never persisted.
type CallbackResult struct {
	Provider string
	// Token is set on success.
	Token *TokenRecord
	// Kind and Detail are set on failure.
	Kind   ErrorKind
	Detail string
}

// Success builds a successful result.
func Success(provider string, token TokenRecord) CallbackResult {
	return CallbackResult{Provider: provider, Token: &token}
}

// Failure builds a failed result.
func Failure(provider string, kind ErrorKind, detail string) CallbackResult {
	return CallbackResult{Provider: provider, Kind: kind, Detail: detail}
}

// Succeeded reports whether the result carries a stored token.
func (r CallbackResult) Succeeded() bool {
	return r.Token != nil && r.Kind == ""
}

// Reason is the short machine-readable reason used in the error redirect.
// ProviderDenied reports the provider's own error value.
func (r CallbackResult) Reason() string {
	if r.Succeeded() {
		return ""
	}
	if r.Kind == ErrorKindProviderDenied && r.Detail != "" {
		return r.Detail
	}
	return string(r.Kind)
}

// CallbackOutcome pairs a result with the redirect the caller should follow.
type CallbackOutcome struct {
	Result      CallbackResult
	RedirectURL string
}

// CallbackEvent is emitted at each state transition of a callback invocation.
type CallbackEvent struct {
	// InvocationID groups the events of one callback.
	InvocationID string
	Provider     string
	State        CallbackState
	// Kind and Detail are set when State is CallbackFailed.
	Kind   ErrorKind
	Detail string
	At     time.Time
}
