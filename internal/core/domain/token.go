package domain

import "time"

// TokenRecord is the most recent token set obtained for a provider.
// Exactly one record is live per provider.
type TokenRecord struct {
	// AccessToken is the bearer credential. Never empty for a stored record.
	AccessToken string `json:"access_token"`
	// RefreshToken is empty when the provider does not issue one.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// Scope is the granted scope string, when reported.
	Scope string `json:"scope,omitempty"`
	// ExpiresAt is nil when the provider does not report expiry.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// Extra holds provider-specific response fields, carried through uninterpreted.
	Extra map[string]any `json:"extra,omitempty"`
	// ObtainedAt is when the exchange completed.
	ObtainedAt time.Time `json:"obtained_at"`
}

// IsExpired reports whether the access token has expired at now.
// Records without an expiry never expire.
func (r *TokenRecord) IsExpired(now time.Time) bool {
	if r.ExpiresAt == nil {
		return false
	}
	return !now.Before(*r.ExpiresAt)
}

// HasRefreshToken reports whether the record can be refreshed.
func (r *TokenRecord) HasRefreshToken() bool {
	return r.RefreshToken != ""
}

// Clone returns a deep copy of the record.
func (r TokenRecord) Clone() TokenRecord {
	out := r
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		out.ExpiresAt = &t
	}
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// PendingAuthorization is an authorization request awaiting its callback.
type PendingAuthorization struct {
	// State is the opaque anti-forgery value sent to the provider.
	State string
	// Provider is the provider the authorization was issued for.
	Provider string
	// CodeVerifier is the PKCE verifier, empty when PKCE is not used.
	CodeVerifier string
	// RedirectURI is the redirect_uri used at authorization.
	RedirectURI string
	// ExpiresAt is when the pending entry stops being accepted.
	ExpiresAt time.Time
}

// AuthorizationRequest is the result of starting an authorization.
type AuthorizationRequest struct {
	Provider    string
	URL         string
	State       string
	RedirectURI string
}
