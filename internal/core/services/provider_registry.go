package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
)

// Ensure ProviderRegistry implements the interface.
var _ driving.ProviderRegistry = (*ProviderRegistry)(nil)

// OverrideSource returns the deployment overrides for a provider.
type OverrideSource func(name string) domain.ProviderOverride

// ProviderRegistry is the immutable catalogue of provider descriptors.
type ProviderRegistry struct {
	descriptors map[string]domain.ProviderDescriptor
	names       []string
	credentials driven.CredentialSource
}

// NewProviderRegistry builds descriptors from definitions, applying overrides.
//
// Malformed definitions are programmer errors and fail construction with
// domain.ErrInvalidDescriptor. Missing credential values do not: credentials
// may be supplied after process start and are enforced at request time.
func NewProviderRegistry(
	definitions []domain.ProviderDefinition,
	credentials driven.CredentialSource,
	overrides OverrideSource,
) (*ProviderRegistry, error) {
	if credentials == nil {
		return nil, fmt.Errorf("%w: credential source is required", domain.ErrInvalidDescriptor)
	}

	r := &ProviderRegistry{
		descriptors: make(map[string]domain.ProviderDescriptor, len(definitions)),
		names:       make([]string, 0, len(definitions)),
		credentials: credentials,
	}

	for _, def := range definitions {
		var override domain.ProviderOverride
		if overrides != nil {
			override = overrides(def.Name)
		}

		desc, err := buildDescriptor(def, override)
		if err != nil {
			return nil, err
		}
		if _, exists := r.descriptors[desc.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate provider %q", domain.ErrInvalidDescriptor, desc.Name)
		}

		r.descriptors[desc.Name] = desc
		r.names = append(r.names, desc.Name)
	}
	sort.Strings(r.names)

	return r, nil
}

// buildDescriptor validates a definition and resolves it into a descriptor.
func buildDescriptor(def domain.ProviderDefinition, override domain.ProviderOverride) (domain.ProviderDescriptor, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return domain.ProviderDescriptor{}, fmt.Errorf("%w: provider name is required", domain.ErrInvalidDescriptor)
	}
	if err := def.Endpoints.Validate(); err != nil {
		return domain.ProviderDescriptor{}, fmt.Errorf("provider %q: %w", name, err)
	}
	if def.SandboxEndpoints != nil {
		if err := def.SandboxEndpoints.Validate(); err != nil {
			return domain.ProviderDescriptor{}, fmt.Errorf("provider %q sandbox: %w", name, err)
		}
	}
	if !def.TokenRequestStyle.IsValid() {
		return domain.ProviderDescriptor{}, fmt.Errorf("%w: provider %q has no token request style",
			domain.ErrInvalidDescriptor, name)
	}

	creds := def.Credentials
	if creds.ClientIDKey == "" {
		creds.ClientIDKey = domain.EnvPrefix(name) + "CLIENT_ID"
	}
	if creds.ClientSecretKey == "" {
		creds.ClientSecretKey = domain.EnvPrefix(name) + "CLIENT_SECRET"
	}

	suffix := def.RedirectPathSuffix
	if suffix == "" {
		suffix = "/oauth/callback/" + name
	}
	if !strings.HasPrefix(suffix, "/") {
		return domain.ProviderDescriptor{}, fmt.Errorf("%w: provider %q redirect path must start with /",
			domain.ErrInvalidDescriptor, name)
	}

	desc := domain.ProviderDescriptor{
		Name:                 name,
		DisplayName:          def.DisplayName,
		Endpoints:            def.Endpoints,
		Credentials:          creds,
		DefaultScopes:        def.DefaultScopes,
		ExtraAuthorizeParams: def.ExtraAuthorizeParams,
		TokenRequestStyle:    def.TokenRequestStyle,
		RedirectPathSuffix:   suffix,
		UsePKCE:              def.UsePKCE,
	}
	if desc.DisplayName == "" {
		desc.DisplayName = name
	}
	if override.Scopes != nil {
		desc.DefaultScopes = override.Scopes
	}
	if override.Sandbox && def.SandboxEndpoints != nil {
		desc.Endpoints = *def.SandboxEndpoints
		desc.Sandbox = true
	}

	// Detach from the definition's slices and maps.
	return desc.Clone(), nil
}

// Lookup returns a copy of the descriptor registered under name.
func (r *ProviderRegistry) Lookup(name string) (domain.ProviderDescriptor, error) {
	desc, ok := r.descriptors[name]
	if !ok {
		return domain.ProviderDescriptor{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return desc.Clone(), nil
}

// List returns copies of all descriptors sorted by name.
func (r *ProviderRegistry) List() []domain.ProviderDescriptor {
	result := make([]domain.ProviderDescriptor, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.descriptors[name].Clone())
	}
	return result
}

// Credentials resolves the descriptor's client credentials.
func (r *ProviderRegistry) Credentials(descriptor domain.ProviderDescriptor) domain.ClientCredentials {
	var creds domain.ClientCredentials
	if v, ok := r.credentials.Lookup(descriptor.Credentials.ClientIDKey); ok {
		creds.ClientID = strings.TrimSpace(v)
	}
	if v, ok := r.credentials.Lookup(descriptor.Credentials.ClientSecretKey); ok {
		creds.ClientSecret = strings.TrimSpace(v)
	}
	return creds
}

// Configured reports whether both client id and secret currently resolve.
func (r *ProviderRegistry) Configured(descriptor domain.ProviderDescriptor) bool {
	return r.Credentials(descriptor).Complete()
}
