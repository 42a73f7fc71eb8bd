// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TokenStore: Per-provider token record persistence
//   - TokenExchanger: Token endpoint client
//   - CredentialSource: Client id/secret resolution
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - StateStore: Pending authorizations. Without it no state is issued or verified.
//   - CallbackObserver: Transition events. Without it nothing is emitted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
