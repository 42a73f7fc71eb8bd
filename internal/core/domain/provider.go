package domain

import (
	"fmt"
	"strings"
)

// TokenRequestStyle governs how a client authenticates to a provider's token endpoint.
type TokenRequestStyle int

const (
	// TokenRequestSecretInBody sends client_id and client_secret as form fields.
	TokenRequestSecretInBody TokenRequestStyle = iota + 1
	// TokenRequestBasicAuth sends the client credentials in an
	// Authorization: Basic header and keeps them out of the body.
	TokenRequestBasicAuth
)

// String returns the configuration name of the style.
func (s TokenRequestStyle) String() string {
	switch s {
	case TokenRequestSecretInBody:
		return "secret_in_body"
	case TokenRequestBasicAuth:
		return "basic_auth"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the defined styles.
func (s TokenRequestStyle) IsValid() bool {
	return s == TokenRequestSecretInBody || s == TokenRequestBasicAuth
}

// Endpoints holds a provider's OAuth endpoint URLs.
type Endpoints struct {
	// AuthorizeURL is where the user is sent to grant consent.
	AuthorizeURL string `json:"authorize_url"`
	// TokenURL is where authorization codes are exchanged for tokens.
	TokenURL string `json:"token_url"`
}

// Validate checks both endpoints are present.
func (e Endpoints) Validate() error {
	if strings.TrimSpace(e.AuthorizeURL) == "" {
		return fmt.Errorf("%w: authorize endpoint is required", ErrInvalidDescriptor)
	}
	if strings.TrimSpace(e.TokenURL) == "" {
		return fmt.Errorf("%w: token endpoint is required", ErrInvalidDescriptor)
	}
	return nil
}

// CredentialRef names the configuration keys that hold a provider's client credentials.
// The values themselves are resolved at request time and never stored on the descriptor.
type CredentialRef struct {
	ClientIDKey     string `json:"client_id_key"`
	ClientSecretKey string `json:"client_secret_key"`
}

// ClientCredentials are resolved OAuth client credentials.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// HasClientID reports whether a client id was resolved.
func (c ClientCredentials) HasClientID() bool {
	return c.ClientID != ""
}

// Complete reports whether both the client id and secret were resolved.
func (c ClientCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ProviderDescriptor is the static description of one third-party OAuth integration.
// Descriptors are built once by the provider registry and never mutated afterwards;
// the registry hands out copies made with Clone.
type ProviderDescriptor struct {
	// Name is the unique identifier, e.g. "jira" or "paypal".
	Name string `json:"name"`
	// DisplayName is a human-readable label.
	DisplayName string `json:"display_name"`
	// Endpoints are the endpoints selected for this process (sandbox or live).
	Endpoints Endpoints `json:"endpoints"`
	// Credentials names the configuration keys holding client id and secret.
	Credentials CredentialRef `json:"credentials"`
	// DefaultScopes is the ordered scope set requested at authorization.
	DefaultScopes []string `json:"default_scopes,omitempty"`
	// ExtraAuthorizeParams are fixed query parameters the provider requires.
	ExtraAuthorizeParams map[string]string `json:"extra_authorize_params,omitempty"`
	// TokenRequestStyle is how the client authenticates to the token endpoint.
	TokenRequestStyle TokenRequestStyle `json:"token_request_style"`
	// RedirectPathSuffix is appended to the redirect base URL to form redirect_uri.
	RedirectPathSuffix string `json:"redirect_path_suffix"`
	// UsePKCE requests an S256 code challenge during authorization.
	UsePKCE bool `json:"use_pkce,omitempty"`
	// Sandbox reports whether the sandbox endpoint family was selected.
	Sandbox bool `json:"sandbox,omitempty"`
}

// Clone returns a deep copy so callers can never alias registry state.
func (d ProviderDescriptor) Clone() ProviderDescriptor {
	out := d
	if d.DefaultScopes != nil {
		out.DefaultScopes = append([]string(nil), d.DefaultScopes...)
	}
	if d.ExtraAuthorizeParams != nil {
		out.ExtraAuthorizeParams = make(map[string]string, len(d.ExtraAuthorizeParams))
		for k, v := range d.ExtraAuthorizeParams {
			out.ExtraAuthorizeParams[k] = v
		}
	}
	return out
}

// RedirectURI composes the redirect_uri for this provider.
func (d ProviderDescriptor) RedirectURI(redirectBaseURL string) string {
	return strings.TrimSuffix(redirectBaseURL, "/") + d.RedirectPathSuffix
}

// ProviderDefinition is a catalogue entry from which a descriptor is built.
// SandboxEndpoints is set only for providers with a separate sandbox environment.
type ProviderDefinition struct {
	Name                 string
	DisplayName          string
	Endpoints            Endpoints
	SandboxEndpoints     *Endpoints
	Credentials          CredentialRef
	DefaultScopes        []string
	ExtraAuthorizeParams map[string]string
	TokenRequestStyle    TokenRequestStyle
	RedirectPathSuffix   string
	UsePKCE              bool
}

// ProviderOverride carries per-deployment configuration applied at registry build time.
type ProviderOverride struct {
	// Scopes replaces DefaultScopes when non-nil.
	Scopes []string
	// Sandbox selects SandboxEndpoints when the definition has them.
	Sandbox bool
}

// EnvPrefix returns the configuration key prefix for a provider name,
// e.g. "google-drive" becomes "GOOGLE_DRIVE_".
func EnvPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
}
