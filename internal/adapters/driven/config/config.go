// Package config combines configuration sources into the values the core needs.
//
// Credentials resolve through a Chain consulted in order at lookup time.
// Provider overrides are read once from each OverrideReader and merged, the
// first reader that sets a field winning.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Ensure Chain implements the interface.
var _ driven.CredentialSource = Chain(nil)

// Chain is a CredentialSource that returns the first non-empty value.
type Chain []driven.CredentialSource

// NewChain creates a chain from sources, skipping nil entries.
func NewChain(sources ...driven.CredentialSource) Chain {
	chain := make(Chain, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			chain = append(chain, s)
		}
	}
	return chain
}

// Lookup returns the first value any source resolves for key.
func (c Chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Override is a partially specified provider override.
// Nil fields were not set by the reader.
type Override struct {
	Scopes  []string
	Sandbox *bool
}

// OverrideReader reads the override configured for one provider.
type OverrideReader interface {
	ProviderOverride(name string) (Override, error)
}

// ResolveOverrides reads the override for every named provider.
// Readers are consulted in order and earlier readers take precedence per field.
func ResolveOverrides(names []string, readers ...OverrideReader) (map[string]domain.ProviderOverride, error) {
	resolved := make(map[string]domain.ProviderOverride, len(names))
	for _, name := range names {
		var merged domain.ProviderOverride
		var scopesSet, sandboxSet bool
		for _, r := range readers {
			if r == nil {
				continue
			}
			o, err := r.ProviderOverride(name)
			if err != nil {
				return nil, err
			}
			if !scopesSet && o.Scopes != nil {
				merged.Scopes = append([]string{}, o.Scopes...)
				scopesSet = true
			}
			if !sandboxSet && o.Sandbox != nil {
				merged.Sandbox = *o.Sandbox
				sandboxSet = true
			}
		}
		resolved[name] = merged
	}
	return resolved, nil
}

// Ensure StoreOverrides implements the interface.
var _ OverrideReader = StoreOverrides{}

// StoreOverrides reads overrides from the [providers.<name>] table of a ConfigStore.
type StoreOverrides struct {
	Store driven.ConfigStore
}

// ProviderOverride reads scopes and sandbox for name.
func (s StoreOverrides) ProviderOverride(name string) (Override, error) {
	var o Override
	if s.Store == nil {
		return o, nil
	}

	prefix := "providers." + name + "."
	o.Scopes = s.Store.GetStringSlice(prefix + "scopes")

	if raw, ok := s.Store.Get(prefix + "sandbox"); ok {
		switch v := raw.(type) {
		case bool:
			o.Sandbox = &v
		case string:
			b, err := ParseBool(v)
			if err != nil {
				return o, fmt.Errorf("%s: %w", prefix+"sandbox", err)
			}
			o.Sandbox = &b
		default:
			return o, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, prefix+"sandbox")
		}
	}
	return o, nil
}

// ParseBool parses a boolean flag value.
func ParseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, s)
	}
	return b, nil
}

// SplitScopes splits a comma separated scope list, dropping blanks.
// The result is non-nil so an explicitly empty list still overrides.
func SplitScopes(s string) []string {
	scopes := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			scopes = append(scopes, part)
		}
	}
	return scopes
}
