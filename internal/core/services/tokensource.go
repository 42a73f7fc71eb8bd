package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

// refreshLeeway refreshes a token this long before it expires.
const refreshLeeway = time.Minute

// TokenSource returns an oauth2.TokenSource backed by provider's stored token.
// The stored token is refreshed through Refresh when it is about to expire,
// so API clients built on x/oauth2 share the broker's token lifecycle.
func (s *TokenService) TokenSource(ctx context.Context, provider string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &storedTokenSource{
		ctx:      ctx,
		tokens:   s,
		provider: provider,
	})
}

// storedTokenSource adapts TokenService to oauth2.TokenSource.
type storedTokenSource struct {
	ctx      context.Context
	tokens   *TokenService
	provider string
}

// Token implements oauth2.TokenSource.
func (t *storedTokenSource) Token() (*oauth2.Token, error) {
	record, err := t.tokens.Get(t.ctx, t.provider)
	if err != nil {
		return nil, err
	}

	if record.IsExpired(t.tokens.now().Add(refreshLeeway)) {
		if !record.HasRefreshToken() {
			return nil, fmt.Errorf("%w: %s token has expired", domain.ErrNoRefreshToken, t.provider)
		}
		record, err = t.tokens.Refresh(t.ctx, t.provider)
		if err != nil {
			return nil, err
		}
	}

	return toOAuth2Token(*record), nil
}

func toOAuth2Token(record domain.TokenRecord) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  record.AccessToken,
		TokenType:    record.TokenType,
		RefreshToken: record.RefreshToken,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if record.ExpiresAt != nil {
		tok.Expiry = *record.ExpiresAt
	}
	if len(record.Extra) > 0 {
		tok = tok.WithExtra(record.Extra)
	}
	return tok
}
