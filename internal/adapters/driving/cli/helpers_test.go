package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/services"
)

const testRedirectBase = "https://connect.example.com"

// stubExchanger answers every exchange and refresh with record.
type stubExchanger struct {
	record domain.TokenRecord
	err    error
}

func (s *stubExchanger) Exchange(
	context.Context, domain.ProviderDescriptor, domain.ClientCredentials, driven.ExchangeRequest,
) (*domain.TokenRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec := s.record.Clone()
	return &rec, nil
}

func (s *stubExchanger) Refresh(
	context.Context, domain.ProviderDescriptor, domain.ClientCredentials, string,
) (*domain.TokenRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec := s.record.Clone()
	return &rec, nil
}

type testServices struct {
	tokens    *memory.TokenStore
	exchanger *stubExchanger
	config    *memory.ConfigStore
}

// withServices installs services over the built-in catalogue and memory stores.
func withServices(t *testing.T, creds map[string]string) *testServices {
	t.Helper()

	registry, err := services.NewProviderRegistry(services.DefaultCatalogue(), memory.NewCredentialStore(creds), nil)
	require.NoError(t, err)

	ts := &testServices{
		tokens:    memory.NewTokenStore(),
		exchanger: &stubExchanger{record: domain.TokenRecord{AccessToken: "at-refreshed-0001"}},
		config:    memory.NewConfigStore(),
	}

	providerRegistry = registry
	authorizationService = services.NewAuthorizationService(registry, memory.NewStateStore(), testRedirectBase, time.Minute)
	tokenService = services.NewTokenService(registry, ts.tokens, ts.exchanger, time.Second)
	credentialStore = ts.config

	t.Cleanup(func() {
		providerRegistry = nil
		authorizationService = nil
		tokenService = nil
		credentialStore = nil
	})
	return ts
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
