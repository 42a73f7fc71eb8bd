package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
)

// DefaultStateTTL is how long an issued state stays valid.
const DefaultStateTTL = 10 * time.Minute

// AuthorizationOption customises a built authorization URL.
type AuthorizationOption func(*authorizationOptions)

type authorizationOptions struct {
	state        string
	codeVerifier string
}

// WithState attaches an opaque anti-forgery state value.
// The caller must persist it and verify it on callback.
func WithState(state string) AuthorizationOption {
	return func(o *authorizationOptions) {
		o.state = state
	}
}

// WithCodeVerifier attaches an S256 PKCE code challenge derived from verifier.
func WithCodeVerifier(verifier string) AuthorizationOption {
	return func(o *authorizationOptions) {
		o.codeVerifier = verifier
	}
}

// BuildAuthorizationURL builds the provider authorization redirect URL.
//
// It is a pure function of its inputs. The scope parameter is omitted entirely
// when the descriptor resolves to no scopes, since some providers reject an
// empty scope value. Returns a *domain.ConfigError wrapping
// domain.ErrMissingClientID when no client id resolved.
func BuildAuthorizationURL(
	descriptor domain.ProviderDescriptor,
	credentials domain.ClientCredentials,
	redirectBaseURL string,
	opts ...AuthorizationOption,
) (string, error) {
	if !credentials.HasClientID() {
		return "", &domain.ConfigError{Key: descriptor.Credentials.ClientIDKey, Err: domain.ErrMissingClientID}
	}

	var o authorizationOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := oauth2.Config{
		ClientID:    credentials.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: descriptor.Endpoints.AuthorizeURL},
		RedirectURL: descriptor.RedirectURI(redirectBaseURL),
		Scopes:      nonEmpty(descriptor.DefaultScopes),
	}

	// Sorted so the URL is stable for a given descriptor.
	keys := make([]string, 0, len(descriptor.ExtraAuthorizeParams))
	for k := range descriptor.ExtraAuthorizeParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]oauth2.AuthCodeOption, 0, len(keys)+2)
	for _, k := range keys {
		params = append(params, oauth2.SetAuthURLParam(k, descriptor.ExtraAuthorizeParams[k]))
	}
	if o.codeVerifier != "" {
		params = append(params, oauth2.S256ChallengeOption(o.codeVerifier))
	}

	return cfg.AuthCodeURL(o.state, params...), nil
}

// nonEmpty drops blank scope entries.
func nonEmpty(scopes []string) []string {
	var out []string
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ensure AuthorizationService implements the interface.
var _ driving.AuthorizationService = (*AuthorizationService)(nil)

// AuthorizationService issues authorization URLs and the state that protects them.
type AuthorizationService struct {
	registry        driving.ProviderRegistry
	states          driven.StateStore
	redirectBaseURL string
	stateTTL        time.Duration
	now             func() time.Time
}

// NewAuthorizationService creates a new authorization service.
// With a nil state store no state is issued and PKCE is not used.
func NewAuthorizationService(
	registry driving.ProviderRegistry,
	states driven.StateStore,
	redirectBaseURL string,
	stateTTL time.Duration,
) *AuthorizationService {
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}
	return &AuthorizationService{
		registry:        registry,
		states:          states,
		redirectBaseURL: redirectBaseURL,
		stateTTL:        stateTTL,
		now:             time.Now,
	}
}

// Start builds the authorization URL for provider.
func (s *AuthorizationService) Start(ctx context.Context, provider string) (*domain.AuthorizationRequest, error) {
	descriptor, err := s.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	credentials := s.registry.Credentials(descriptor)
	redirectURI := descriptor.RedirectURI(s.redirectBaseURL)

	var (
		opts    []AuthorizationOption
		pending *domain.PendingAuthorization
	)
	if s.states != nil {
		state, err := generateState()
		if err != nil {
			return nil, fmt.Errorf("generate state: %w", err)
		}
		pending = &domain.PendingAuthorization{
			State:       state,
			Provider:    descriptor.Name,
			RedirectURI: redirectURI,
			ExpiresAt:   s.now().Add(s.stateTTL),
		}
		opts = append(opts, WithState(state))

		if descriptor.UsePKCE {
			verifier, err := generateCodeVerifier()
			if err != nil {
				return nil, fmt.Errorf("generate code verifier: %w", err)
			}
			pending.CodeVerifier = verifier
			opts = append(opts, WithCodeVerifier(verifier))
		}
	}

	authURL, err := BuildAuthorizationURL(descriptor, credentials, s.redirectBaseURL, opts...)
	if err != nil {
		return nil, err
	}

	req := &domain.AuthorizationRequest{
		Provider:    descriptor.Name,
		URL:         authURL,
		RedirectURI: redirectURI,
	}
	if pending != nil {
		if err := s.states.Save(ctx, *pending); err != nil {
			return nil, fmt.Errorf("save pending authorization: %w", err)
		}
		req.State = pending.State
	}

	return req, nil
}
