//nolint:noctx // Test file uses http.Get for convenience; context not required in tests
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/oauth"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/services"
)

const appBase = "https://app.example.com/settings"

type fixture struct {
	server     *Server
	tokens     *memory.TokenStore
	tokenCalls *atomic.Int32
	redirect   string
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	calls := &atomic.Int32{}
	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","refresh_token":"rt-123","expires_in":3600,"cloud_id":"c1"}`))
	}))
	t.Cleanup(tokenEndpoint.Close)

	definitions := []domain.ProviderDefinition{
		{
			Name:        "jira",
			DisplayName: "Jira",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://auth.atlassian.com/authorize",
				TokenURL:     tokenEndpoint.URL,
			},
			DefaultScopes:     []string{"read:jira-work"},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "notion",
			DisplayName: "Notion",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://api.notion.com/v1/oauth/authorize",
				TokenURL:     tokenEndpoint.URL,
			},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
	}
	credentials := memory.NewCredentialStore(map[string]string{
		"JIRA_CLIENT_ID":     "jira-id",
		"JIRA_CLIENT_SECRET": "jira-secret",
	})
	registry, err := services.NewProviderRegistry(definitions, credentials, nil)
	require.NoError(t, err)

	const redirectBase = "https://connect.example.com"
	tokens := memory.NewTokenStore()
	states := memory.NewStateStore()
	exchanger := oauth.NewExchangeClient(oauth.WithTimeout(5 * time.Second))

	callbacks, err := services.NewCallbackOrchestrator(services.CallbackConfig{
		Registry:        registry,
		Exchanger:       exchanger,
		Store:           tokens,
		States:          states,
		RedirectBaseURL: redirectBase,
		AppBaseURL:      appBase,
	})
	require.NoError(t, err)

	cfg := Config{
		Addr:           "127.0.0.1:0",
		Registry:       registry,
		Authorizations: services.NewAuthorizationService(registry, states, redirectBase, time.Minute),
		Callbacks:      callbacks,
		Tokens:         services.NewTokenService(registry, tokens, exchanger, 5*time.Second),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	server, err := NewServer(cfg)
	require.NoError(t, err)

	return &fixture{server: server, tokens: tokens, tokenCalls: calls, redirect: redirectBase}
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func location(t *testing.T, w *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code)
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// =============================================================================
// Start
// =============================================================================

func TestStart_UnknownProvider(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/oauth/start/myspace")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown provider: myspace", decodeError(t, w))
}

func TestStart_MissingClientID(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/oauth/start/notion")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Missing NOTION_CLIENT_ID", decodeError(t, w))
}

func TestStart_RedirectsToProvider(t *testing.T) {
	f := newFixture(t, nil)

	u := location(t, f.do(t, http.MethodGet, "/oauth/start/jira"))

	assert.Equal(t, "auth.atlassian.com", u.Host)
	q := u.Query()
	assert.Equal(t, "jira-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, f.redirect+"/oauth/callback/jira", q.Get("redirect_uri"))
	assert.Equal(t, "read:jira-work", q.Get("scope"))
	assert.NotEmpty(t, q.Get("state"))
	assert.NotContains(t, u.String(), "jira-secret")
}

// =============================================================================
// Callback
// =============================================================================

func TestAuthorizationRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	start := location(t, f.do(t, http.MethodGet, "/oauth/start/jira"))
	state := start.Query().Get("state")

	w := f.do(t, http.MethodGet, "/oauth/callback/jira?code=abc&state="+url.QueryEscape(state))
	done := location(t, w)

	assert.Equal(t, "app.example.com", done.Host)
	assert.Equal(t, "jira", done.Query().Get("oauth_success"))
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	record, err := f.tokens.Get(context.Background(), "jira")
	require.NoError(t, err)
	assert.Equal(t, "at-123", record.AccessToken)
	assert.Equal(t, "c1", record.Extra["cloud_id"])

	w = f.do(t, http.MethodGet, "/oauth/callback/jira?code=abc&state="+url.QueryEscape(state))
	assert.Equal(t, "state_mismatch", location(t, w).Query().Get("oauth_error"))
	assert.Equal(t, int32(1), f.tokenCalls.Load(), "a replayed state never reaches the token endpoint")
}

func TestCallback_NoParams(t *testing.T) {
	f := newFixture(t, nil)

	u := location(t, f.do(t, http.MethodGet, "/oauth/callback/jira"))

	assert.Equal(t, "missing_code", u.Query().Get("oauth_error"))
	assert.Equal(t, int32(0), f.tokenCalls.Load())
	providers, err := f.tokens.ListProviders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, providers)
}

func TestCallback_AccessDenied(t *testing.T) {
	f := newFixture(t, nil)

	u := location(t, f.do(t, http.MethodGet,
		"/oauth/callback/jira?error=access_denied&error_description=User+declined"))

	assert.Equal(t, "access_denied", u.Query().Get("oauth_error"))
	assert.Equal(t, int32(0), f.tokenCalls.Load())
}

func TestCallback_UnregisteredProviderNoParams(t *testing.T) {
	f := newFixture(t, nil)

	u := location(t, f.do(t, http.MethodGet, "/oauth/callback/foo"))

	assert.Equal(t, "missing_code", u.Query().Get("oauth_error"))
	assert.Equal(t, int32(0), f.tokenCalls.Load())
}

func TestCallback_UnknownProvider(t *testing.T) {
	f := newFixture(t, nil)

	u := location(t, f.do(t, http.MethodGet, "/oauth/callback/myspace?code=abc"))

	assert.Equal(t, "unknown_provider", u.Query().Get("oauth_error"))
}

// =============================================================================
// Connections
// =============================================================================

func TestConnections(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.tokens.Put(context.Background(), "jira", domain.TokenRecord{
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
	}))

	w := f.do(t, http.MethodGet, "/oauth/connections")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-access")
	assert.NotContains(t, w.Body.String(), "secret-refresh")

	var statuses []struct {
		Provider   string `json:"provider"`
		Configured bool   `json:"configured"`
		Connected  bool   `json:"connected"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "jira", statuses[0].Provider)
	assert.True(t, statuses[0].Configured)
	assert.True(t, statuses[0].Connected)
	assert.Equal(t, "notion", statuses[1].Provider)
	assert.False(t, statuses[1].Configured)
	assert.False(t, statuses[1].Connected)
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.tokens.Put(ctx, "jira", domain.TokenRecord{AccessToken: "a"}))

	w := f.do(t, http.MethodDelete, "/oauth/connections/jira")
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := f.tokens.Get(ctx, "jira")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	w = f.do(t, http.MethodDelete, "/oauth/connections/jira")
	assert.Equal(t, http.StatusNoContent, w.Code, "disconnect is idempotent")

	w = f.do(t, http.MethodDelete, "/oauth/connections/myspace")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Rate limiting
// =============================================================================

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 2
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/oauth/connections").Code)
	}

	w := f.do(t, http.MethodGet, "/oauth/connections")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", decodeError(t, w))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz").Code, "health checks are not limited")
}

func TestClientLimiter_PerClient(t *testing.T) {
	l := newClientLimiter(0.001, 1)

	assert.True(t, l.Allow("192.0.2.1"))
	assert.False(t, l.Allow("192.0.2.1"))
	assert.True(t, l.Allow("192.0.2.2"))
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestServer_StartStop(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.server.Start())
	addr := f.server.Addr()
	assert.False(t, strings.HasSuffix(addr, ":0"), "bound address reports the real port")

	assert.Error(t, f.server.Start(), "starting twice fails")

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.server.Stop(ctx))
	assert.NoError(t, f.server.Stop(ctx), "stopping twice is a no-op")

	select {
	case err := <-f.server.Err():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first := newFixture(t, nil)
	require.NoError(t, first.server.Start())
	t.Cleanup(func() { _ = first.server.Stop(context.Background()) })

	second := newFixture(t, func(cfg *Config) { cfg.Addr = first.server.Addr() })
	assert.Error(t, second.server.Start())
}
