package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
)

// DefaultExchangeTimeout bounds a single token endpoint call.
const DefaultExchangeTimeout = 15 * time.Second

// Redirect query keys reported back to the application.
const (
	SuccessParam = "oauth_success"
	ErrorParam   = "oauth_error"
)

// Ensure CallbackOrchestrator implements the interface.
var _ driving.CallbackService = (*CallbackOrchestrator)(nil)

// CallbackConfig wires a CallbackOrchestrator.
type CallbackConfig struct {
	Registry  driving.ProviderRegistry
	Exchanger driven.TokenExchanger
	Store     driven.TokenStore
	// States is optional. When set, every callback must present a state it issued.
	States driven.StateStore
	// Observer is optional.
	Observer driven.CallbackObserver
	// RedirectBaseURL composes redirect_uri values and must match the one used at authorization.
	RedirectBaseURL string
	// AppBaseURL is where the caller is sent once the callback completes.
	AppBaseURL string
	// ExchangeTimeout defaults to DefaultExchangeTimeout.
	ExchangeTimeout time.Duration
}

// CallbackOrchestrator validates inbound callbacks, drives the token exchange,
// and persists the result.
//
// Each invocation moves through received, validated and exchanging to one of
// the terminal states stored or failed. A failed invocation never mutates the
// token store, so a previously stored token stays usable.
type CallbackOrchestrator struct {
	registry        driving.ProviderRegistry
	exchanger       driven.TokenExchanger
	store           driven.TokenStore
	states          driven.StateStore
	observer        driven.CallbackObserver
	redirectBaseURL string
	appBaseURL      *url.URL
	timeout         time.Duration
	now             func() time.Time
}

// NewCallbackOrchestrator creates a new callback orchestrator.
func NewCallbackOrchestrator(cfg CallbackConfig) (*CallbackOrchestrator, error) {
	if cfg.Registry == nil || cfg.Exchanger == nil || cfg.Store == nil {
		return nil, fmt.Errorf("%w: registry, exchanger and store are required", domain.ErrInvalidInput)
	}

	appBase, err := url.Parse(cfg.AppBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: app base url: %w", domain.ErrInvalidInput, err)
	}
	if !appBase.IsAbs() && !strings.HasPrefix(cfg.AppBaseURL, "/") {
		return nil, fmt.Errorf("%w: app base url must be absolute or rooted: %q", domain.ErrInvalidInput, cfg.AppBaseURL)
	}

	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = DefaultExchangeTimeout
	}

	return &CallbackOrchestrator{
		registry:        cfg.Registry,
		exchanger:       cfg.Exchanger,
		store:           cfg.Store,
		states:          cfg.States,
		observer:        cfg.Observer,
		redirectBaseURL: cfg.RedirectBaseURL,
		appBaseURL:      appBase,
		timeout:         timeout,
		now:             time.Now,
	}, nil
}

// invocation tracks one callback through the state machine.
type invocation struct {
	o        *CallbackOrchestrator
	ctx      context.Context
	id       string
	provider string
}

func (inv *invocation) emit(state domain.CallbackState, kind domain.ErrorKind, detail string) {
	if inv.o.observer == nil {
		return
	}
	inv.o.observer.OnCallbackEvent(inv.ctx, domain.CallbackEvent{
		InvocationID: inv.id,
		Provider:     inv.provider,
		State:        state,
		Kind:         kind,
		Detail:       detail,
		At:           inv.o.now(),
	})
}

func (inv *invocation) fail(kind domain.ErrorKind, detail string) domain.CallbackOutcome {
	detail = domain.Truncate(detail, domain.MaxErrorDetail)
	inv.emit(domain.CallbackFailed, kind, detail)
	result := domain.Failure(inv.provider, kind, detail)
	return domain.CallbackOutcome{
		Result:      result,
		RedirectURL: inv.o.redirect(ErrorParam, result.Reason()),
	}
}

// HandleCallback processes one provider callback and returns the redirect to follow.
func (o *CallbackOrchestrator) HandleCallback(
	ctx context.Context,
	provider string,
	params domain.CallbackParams,
) domain.CallbackOutcome {
	inv := &invocation{o: o, ctx: ctx, id: uuid.NewString(), provider: provider}
	inv.emit(domain.CallbackReceived, "", "")

	// RECEIVED -> VALIDATED
	if params.Error != "" {
		return inv.fail(domain.ErrorKindProviderDenied, params.Error)
	}
	if params.Code == "" {
		return inv.fail(domain.ErrorKindMissingCode, "no authorization code in callback")
	}

	descriptor, err := o.registry.Lookup(provider)
	if err != nil {
		return inv.fail(domain.ErrorKindUnknownProvider, provider)
	}

	redirectURI := descriptor.RedirectURI(o.redirectBaseURL)
	var codeVerifier string
	if o.states != nil {
		pending, detail := o.verifyState(ctx, descriptor.Name, params.State)
		if pending == nil {
			return inv.fail(domain.ErrorKindStateMismatch, detail)
		}
		codeVerifier = pending.CodeVerifier
		if pending.RedirectURI != "" {
			redirectURI = pending.RedirectURI
		}
	}
	inv.emit(domain.CallbackValidated, "", "")

	// VALIDATED -> EXCHANGING
	credentials := o.registry.Credentials(descriptor)
	if !credentials.Complete() {
		return inv.fail(domain.ErrorKindMissingClientConfig, missingKeys(descriptor, credentials))
	}
	inv.emit(domain.CallbackExchanging, "", "")

	// The exchange outlives an aborted inbound request: the code is consumed
	// by the provider either way, so a completed exchange is still stored.
	detached := context.WithoutCancel(ctx)
	exchangeCtx, cancel := context.WithTimeout(detached, o.timeout)
	record, err := o.exchanger.Exchange(exchangeCtx, descriptor, credentials, driven.ExchangeRequest{
		Code:         params.Code,
		RedirectURI:  redirectURI,
		CodeVerifier: codeVerifier,
	})
	cancel()
	if err != nil {
		kind, detail := classifyExchangeError(err)
		return inv.fail(kind, detail)
	}
	if record == nil || record.AccessToken == "" {
		return inv.fail(domain.ErrorKindExchangeFailed, "token response has no access_token")
	}

	// EXCHANGING -> STORED
	if err := o.store.Put(detached, descriptor.Name, *record); err != nil {
		return inv.fail(domain.ErrorKindStoreFailed, err.Error())
	}
	inv.emit(domain.CallbackStored, "", "")

	return domain.CallbackOutcome{
		Result:      domain.Success(descriptor.Name, *record),
		RedirectURL: o.redirect(SuccessParam, descriptor.Name),
	}
}

// verifyState consumes the pending authorization for state.
// It returns nil and a reason when the state does not belong to provider.
func (o *CallbackOrchestrator) verifyState(
	ctx context.Context,
	provider, state string,
) (*domain.PendingAuthorization, string) {
	if state == "" {
		return nil, "callback has no state"
	}
	pending, err := o.states.Consume(ctx, state)
	if err != nil {
		return nil, "state is unknown, used or expired"
	}
	if pending.Provider != provider {
		return nil, "state was issued for a different provider"
	}
	return pending, ""
}

// redirect builds the application redirect with one status parameter.
// url.Values encodes the value so raw error text cannot break out of the query.
func (o *CallbackOrchestrator) redirect(key, value string) string {
	u := *o.appBaseURL
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// classifyExchangeError maps an exchanger error onto a failure kind and detail.
func classifyExchangeError(err error) (domain.ErrorKind, string) {
	var exErr *domain.ExchangeError
	if errors.As(err, &exErr) {
		return exErr.Kind, exErr.Detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorKindTimeout, err.Error()
	}
	return domain.ErrorKindExchangeFailed, err.Error()
}

// missingKeys names the unresolved credential keys without revealing values.
func missingKeys(descriptor domain.ProviderDescriptor, credentials domain.ClientCredentials) string {
	var missing []string
	if credentials.ClientID == "" {
		missing = append(missing, descriptor.Credentials.ClientIDKey)
	}
	if credentials.ClientSecret == "" {
		missing = append(missing, descriptor.Credentials.ClientSecretKey)
	}
	return "Missing " + strings.Join(missing, ", ")
}
