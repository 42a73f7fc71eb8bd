// Package domain defines the core business entities for sercha-connect.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProviderDescriptor: Static description of one OAuth integration
//   - TokenRecord: The live token set held for a provider
//   - CallbackResult: Transient outcome of one OAuth callback
//   - PendingAuthorization: An issued state awaiting its callback
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
