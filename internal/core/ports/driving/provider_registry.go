package driving

import "github.com/custodia-labs/sercha-connect/internal/core/domain"

// ProviderRegistry is the static catalogue of provider descriptors.
type ProviderRegistry interface {
	// Lookup returns a copy of the descriptor registered under name.
	// Returns domain.ErrUnknownProvider if none is registered.
	Lookup(name string) (domain.ProviderDescriptor, error)

	// List returns copies of all descriptors sorted by name.
	List() []domain.ProviderDescriptor

	// Credentials resolves the descriptor's client credentials from configuration.
	Credentials(descriptor domain.ProviderDescriptor) domain.ClientCredentials

	// Configured reports whether both client id and secret currently resolve.
	Configured(descriptor domain.ProviderDescriptor) bool
}
