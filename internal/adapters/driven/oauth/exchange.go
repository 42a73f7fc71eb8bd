// Package oauth implements the token endpoint side of the authorization-code grant.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// DefaultTimeout bounds a single token endpoint call.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a token response is read.
const maxResponseBytes = 1 << 20

const userAgent = "sercha-connect"

// Ensure ExchangeClient implements the interface.
var _ driven.TokenExchanger = (*ExchangeClient)(nil)

// ExchangeClient performs token requests against provider token endpoints.
// How client credentials are presented is taken from the descriptor.
type ExchangeClient struct {
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// Option configures an ExchangeClient.
type Option func(*ExchangeClient)

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ExchangeClient) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *ExchangeClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock used to compute expiry.
func WithClock(now func() time.Time) Option {
	return func(c *ExchangeClient) {
		c.now = now
	}
}

// NewExchangeClient creates a new exchange client.
func NewExchangeClient(opts ...Option) *ExchangeClient {
	c := &ExchangeClient{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exchange converts an authorization code into a token record.
// It issues exactly one request and never retries.
func (c *ExchangeClient) Exchange(
	ctx context.Context,
	descriptor domain.ProviderDescriptor,
	credentials domain.ClientCredentials,
	req driven.ExchangeRequest,
) (*domain.TokenRecord, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", req.Code)
	form.Set("redirect_uri", req.RedirectURI)
	if req.CodeVerifier != "" {
		form.Set("code_verifier", req.CodeVerifier)
	}
	return c.do(ctx, descriptor, credentials, form)
}

// Refresh obtains a new token record using a refresh token.
func (c *ExchangeClient) Refresh(
	ctx context.Context,
	descriptor domain.ProviderDescriptor,
	credentials domain.ClientCredentials,
	refreshToken string,
) (*domain.TokenRecord, error) {
	if refreshToken == "" {
		return nil, domain.ErrNoRefreshToken
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.do(ctx, descriptor, credentials, form)
}

func (c *ExchangeClient) do(
	ctx context.Context,
	descriptor domain.ProviderDescriptor,
	credentials domain.ClientCredentials,
	form url.Values,
) (*domain.TokenRecord, error) {
	if descriptor.TokenRequestStyle != domain.TokenRequestBasicAuth {
		form.Set("client_id", credentials.ClientID)
		form.Set("client_secret", credentials.ClientSecret)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, descriptor.Endpoints.TokenURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, domain.NewExchangeError(domain.ErrorKindExchangeFailed, 0, "create request: "+err.Error())
	}
	// Always form encoded. Some providers answer a JSON body with a generic error.
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if descriptor.TokenRequestStyle == domain.TokenRequestBasicAuth {
		httpReq.SetBasicAuth(credentials.ClientID, credentials.ClientSecret)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewExchangeError(domain.ErrorKindExchangeFailed, resp.StatusCode, errorDetail(body))
	}

	fields, err := decodeFields(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, domain.NewExchangeError(domain.ErrorKindExchangeFailed, resp.StatusCode,
			"malformed token response: "+string(body))
	}

	return c.toRecord(resp.StatusCode, fields)
}

// toRecord maps a decoded success body onto a token record.
// Fields the record does not name are preserved in Extra.
func (c *ExchangeClient) toRecord(status int, fields map[string]any) (*domain.TokenRecord, error) {
	accessToken, _ := fields["access_token"].(string)
	if accessToken == "" {
		if detail := providerError(fields); detail != "" {
			return nil, domain.NewExchangeError(domain.ErrorKindExchangeFailed, status, detail)
		}
		return nil, domain.NewExchangeError(domain.ErrorKindExchangeFailed, status, "token response has no access_token")
	}

	now := c.now()
	record := &domain.TokenRecord{
		AccessToken: accessToken,
		ObtainedAt:  now,
	}
	record.RefreshToken, _ = fields["refresh_token"].(string)
	record.TokenType, _ = fields["token_type"].(string)
	record.Scope, _ = fields["scope"].(string)

	// The code is already spent, so an unusable expires_in only drops the expiry.
	if raw, ok := fields["expires_in"]; ok {
		seconds, present, err := parseExpiresIn(raw)
		switch {
		case err != nil:
			logger.Warn("ignoring expires_in in token response: %v", err)
		case present:
			exp := now.Add(time.Duration(seconds) * time.Second)
			record.ExpiresAt = &exp
		}
	}

	for k, v := range fields {
		switch k {
		case "access_token", "refresh_token", "token_type", "scope", "expires_in":
			continue
		}
		if record.Extra == nil {
			record.Extra = make(map[string]any)
		}
		record.Extra[k] = v
	}

	return record, nil
}

// decodeFields parses a success body as JSON, or as a form-encoded body when
// the provider answers that way despite the Accept header.
func decodeFields(contentType string, body []byte) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/x-www-form-urlencoded" && mediaType != "text/plain" {
		var fields map[string]any
		err := json.Unmarshal(body, &fields)
		if err == nil && fields != nil {
			return fields, nil
		}
		if mediaType == "application/json" {
			return nil, errors.New("invalid json")
		}
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil || len(values) == 0 {
		return nil, errors.New("unrecognised token response")
	}
	fields := make(map[string]any, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	return fields, nil
}

// parseExpiresIn accepts a JSON number or a numeric string.
// present is false for null or an empty string.
func parseExpiresIn(raw any) (seconds int64, present bool, err error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v > math.MaxInt32 {
			return 0, false, fmt.Errorf("expires_in out of range: %v", v)
		}
		return int64(v), true, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("expires_in is not a number: %q", v)
		}
		if n < 0 || n > math.MaxInt32 {
			return 0, false, fmt.Errorf("expires_in out of range: %d", n)
		}
		return n, true, nil
	case nil:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("expires_in has unexpected type %T", raw)
	}
}

// errorDetail extracts error and error_description from a failure body,
// falling back to the raw body.
func errorDetail(body []byte) string {
	if fields, err := decodeFields("", body); err == nil {
		if detail := providerError(fields); detail != "" {
			return detail
		}
	}
	if len(body) == 0 {
		return "empty response body"
	}
	return string(body)
}

// providerError formats the RFC 6749 error fields when present.
func providerError(fields map[string]any) string {
	code := stringField(fields["error"])
	desc := stringField(fields["error_description"])
	switch {
	case code != "" && desc != "":
		return code + ": " + desc
	case code != "":
		return code
	default:
		return desc
	}
}

// stringField renders an error field. Some providers send error as an object.
func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// transportError classifies a failed round trip.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewExchangeError(domain.ErrorKindTimeout, 0, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewExchangeError(domain.ErrorKindTimeout, 0, err.Error())
	}
	return domain.NewExchangeError(domain.ErrorKindExchangeFailed, 0, err.Error())
}
