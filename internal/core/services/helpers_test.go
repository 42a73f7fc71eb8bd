package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

const testRedirectBase = "https://connect.example.com"

// fakeExchanger records calls and answers with a canned result.
type fakeExchanger struct {
	mu            sync.Mutex
	calls         []driven.ExchangeRequest
	refreshTokens []string
	record        *domain.TokenRecord
	err           error
	// block, when set, is waited on before answering or until ctx is done.
	block chan struct{}
}

func (f *fakeExchanger) Exchange(
	ctx context.Context,
	_ domain.ProviderDescriptor,
	_ domain.ClientCredentials,
	req driven.ExchangeRequest,
) (*domain.TokenRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.record == nil {
		return nil, nil
	}
	rec := f.record.Clone()
	return &rec, nil
}

func (f *fakeExchanger) Refresh(
	_ context.Context,
	_ domain.ProviderDescriptor,
	_ domain.ClientCredentials,
	refreshToken string,
) (*domain.TokenRecord, error) {
	f.mu.Lock()
	f.refreshTokens = append(f.refreshTokens, refreshToken)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	rec := f.record.Clone()
	return &rec, nil
}

func (f *fakeExchanger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testDefinitions is a small catalogue covering both auth styles and PKCE.
func testDefinitions() []domain.ProviderDefinition {
	return []domain.ProviderDefinition{
		{
			Name:        "jira",
			DisplayName: "Jira",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://auth.atlassian.com/authorize",
				TokenURL:     "https://auth.atlassian.com/oauth/token",
			},
			DefaultScopes:        []string{"read:jira-work", "offline_access"},
			ExtraAuthorizeParams: map[string]string{"audience": "api.atlassian.com", "prompt": "consent"},
			TokenRequestStyle:    domain.TokenRequestSecretInBody,
		},
		{
			Name: "notion",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://api.notion.com/v1/oauth/authorize",
				TokenURL:     "https://api.notion.com/v1/oauth/token",
			},
			ExtraAuthorizeParams: map[string]string{"owner": "user"},
			TokenRequestStyle:    domain.TokenRequestBasicAuth,
		},
		{
			Name: "paypal",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://www.paypal.com/signin/authorize",
				TokenURL:     "https://api-m.paypal.com/v1/oauth2/token",
			},
			SandboxEndpoints: &domain.Endpoints{
				AuthorizeURL: "https://www.sandbox.paypal.com/signin/authorize",
				TokenURL:     "https://api-m.sandbox.paypal.com/v1/oauth2/token",
			},
			DefaultScopes:     []string{"openid"},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
		{
			Name: "google",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:     "https://oauth2.googleapis.com/token",
			},
			DefaultScopes:     []string{"openid"},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
			UsePKCE:           true,
		},
	}
}

// allCredentials configures every test provider.
func allCredentials() map[string]string {
	creds := map[string]string{}
	for _, def := range testDefinitions() {
		prefix := domain.EnvPrefix(def.Name)
		creds[prefix+"CLIENT_ID"] = def.Name + "-id"
		creds[prefix+"CLIENT_SECRET"] = def.Name + "-secret"
	}
	return creds
}

func newTestRegistry(t *testing.T, creds map[string]string) *ProviderRegistry {
	t.Helper()
	registry, err := NewProviderRegistry(testDefinitions(), memory.NewCredentialStore(creds), nil)
	require.NoError(t, err)
	return registry
}
