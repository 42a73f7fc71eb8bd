package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
)

// Ensure TokenService implements the interface.
var _ driving.TokenService = (*TokenService)(nil)

// TokenService exposes stored tokens to the rest of the application.
type TokenService struct {
	registry  driving.ProviderRegistry
	store     driven.TokenStore
	exchanger driven.TokenExchanger
	timeout   time.Duration
	now       func() time.Time
}

// NewTokenService creates a new token service.
// The exchanger may be nil, in which case Refresh is unavailable.
func NewTokenService(
	registry driving.ProviderRegistry,
	store driven.TokenStore,
	exchanger driven.TokenExchanger,
	timeout time.Duration,
) *TokenService {
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}
	return &TokenService{
		registry:  registry,
		store:     store,
		exchanger: exchanger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// ListProviders returns the providers currently holding a token record.
func (s *TokenService) ListProviders(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.ListProviders(ctx)
}

// Get returns the token record for provider.
func (s *TokenService) Get(ctx context.Context, provider string) (*domain.TokenRecord, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.Get(ctx, provider)
}

// Remove disconnects provider.
func (s *TokenService) Remove(ctx context.Context, provider string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if provider == "" {
		return domain.ErrInvalidInput
	}
	return s.store.Remove(ctx, provider)
}

// Refresh exchanges the stored refresh token for a new record.
// The stored record is replaced only when the refresh succeeds.
func (s *TokenService) Refresh(ctx context.Context, provider string) (*domain.TokenRecord, error) {
	if s.store == nil || s.exchanger == nil {
		return nil, domain.ErrNotImplemented
	}

	descriptor, err := s.registry.Lookup(provider)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, descriptor.Name)
	if err != nil {
		return nil, err
	}
	if !current.HasRefreshToken() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoRefreshToken, descriptor.Name)
	}

	credentials := s.registry.Credentials(descriptor)
	if !credentials.Complete() {
		key := descriptor.Credentials.ClientSecretKey
		if credentials.ClientID == "" {
			key = descriptor.Credentials.ClientIDKey
		}
		return nil, &domain.ConfigError{Key: key, Err: domain.ErrMissingClientConfig}
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	fresh, err := s.exchanger.Refresh(refreshCtx, descriptor, credentials, current.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	merged := mergeRefreshed(*current, *fresh)
	if err := s.store.Put(ctx, descriptor.Name, merged); err != nil {
		return nil, fmt.Errorf("store refreshed token: %w", err)
	}

	return &merged, nil
}

// mergeRefreshed overlays a refresh response on the current record.
// Providers commonly omit the refresh token and auxiliary fields on refresh;
// those carry over from the current record.
func mergeRefreshed(current, fresh domain.TokenRecord) domain.TokenRecord {
	merged := fresh.Clone()
	if merged.RefreshToken == "" {
		merged.RefreshToken = current.RefreshToken
	}
	if merged.Scope == "" {
		merged.Scope = current.Scope
	}
	if merged.TokenType == "" {
		merged.TokenType = current.TokenType
	}
	for k, v := range current.Extra {
		if _, ok := merged.Extra[k]; ok {
			continue
		}
		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(current.Extra))
		}
		merged.Extra[k] = v
	}
	return merged
}

// Connections reports the status of every registered provider.
func (s *TokenService) Connections(ctx context.Context) ([]driving.ConnectionStatus, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	descriptors := s.registry.List()
	result := make([]driving.ConnectionStatus, 0, len(descriptors))
	for _, d := range descriptors {
		status := driving.ConnectionStatus{
			Provider:    d.Name,
			DisplayName: d.DisplayName,
			Configured:  s.registry.Configured(d),
		}

		record, err := s.store.Get(ctx, d.Name)
		switch {
		case err == nil:
			status.Connected = true
			status.ExpiresAt = record.ExpiresAt
			status.Refreshable = record.HasRefreshToken()
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, fmt.Errorf("get token for %s: %w", d.Name, err)
		}

		result = append(result, status)
	}
	return result, nil
}
