// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The OAuth flow is split across three services parameterised by
// provider descriptors: AuthorizationService issues the redirect,
// CallbackOrchestrator handles the provider's callback, and
// TokenService exposes what was stored.
package services
