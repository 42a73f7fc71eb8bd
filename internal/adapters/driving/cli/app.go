package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/config"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/oauth"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/observer"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/services"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// app holds the wired application.
type app struct {
	settings       env.Settings
	config         *file.ConfigStore
	registry       *services.ProviderRegistry
	authorizations *services.AuthorizationService
	callbacks      *services.CallbackOrchestrator
	tokens         *services.TokenService
	closers        []func() error
}

// newApp wires stores, registry and services from settings.
//
// Credentials resolve on every request, environment first and config.toml
// second, so a reloaded file takes effect immediately. Scope and sandbox
// overrides are resolved once here.
func newApp(settings env.Settings) (*app, error) {
	configStore, err := file.NewConfigStore(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	logger.Debug("config file %s", configStore.Path())

	catalogue := services.DefaultCatalogue()
	names := make([]string, 0, len(catalogue))
	for _, def := range catalogue {
		names = append(names, def.Name)
	}

	overrides, err := config.ResolveOverrides(names,
		env.NewOverrides(nil),
		config.StoreOverrides{Store: configStore},
	)
	if err != nil {
		return nil, fmt.Errorf("resolve provider overrides: %w", err)
	}

	registry, err := services.NewProviderRegistry(
		catalogue,
		config.NewChain(env.NewSource(nil), configStore),
		func(name string) domain.ProviderOverride { return overrides[name] },
	)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}

	a := &app{settings: settings, config: configStore, registry: registry}

	var (
		tokens driven.TokenStore
		states driven.StateStore
	)
	switch settings.Store {
	case env.StoreMemory:
		tokens = memory.NewTokenStore()
		states = memory.NewStateStore()
	default:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		logger.Debug("token store %s", store.Path())
		a.closers = append(a.closers, store.Close)
		tokens = store.TokenStore()
		states = store.StateStore()
	}

	exchanger := oauth.NewExchangeClient(oauth.WithTimeout(settings.ExchangeTimeout))

	a.callbacks, err = services.NewCallbackOrchestrator(services.CallbackConfig{
		Registry:        registry,
		Exchanger:       exchanger,
		Store:           tokens,
		States:          states,
		Observer:        observer.NewMulti(observer.Logging{}, observer.Tracing{}),
		RedirectBaseURL: settings.RedirectBaseURL,
		AppBaseURL:      settings.AppBaseURL,
		ExchangeTimeout: settings.ExchangeTimeout,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.authorizations = services.NewAuthorizationService(registry, states, settings.RedirectBaseURL, settings.StateTTL)
	a.tokens = services.NewTokenService(registry, tokens, exchanger, settings.ExchangeTimeout)

	return a, nil
}

// Close releases stores opened by newApp.
func (a *app) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.closers = nil
	return errors.Join(errs...)
}
