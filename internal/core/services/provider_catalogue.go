package services

import "github.com/custodia-labs/sercha-connect/internal/core/domain"

// Atlassian products share one authorization server.
const (
	atlassianAuthorizeURL = "https://auth.atlassian.com/authorize"
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	atlassianTokenURL = "https://auth.atlassian.com/oauth/token"
)

// DefaultCatalogue returns the built-in provider definitions.
// Provider differences live here as data; there is no per-provider code.
func DefaultCatalogue() []domain.ProviderDefinition {
	return []domain.ProviderDefinition{
		{
			Name:        "jira",
			DisplayName: "Jira",
			Endpoints: domain.Endpoints{
				AuthorizeURL: atlassianAuthorizeURL,
				TokenURL:     atlassianTokenURL,
			},
			DefaultScopes: []string{"read:jira-work", "read:jira-user", "offline_access"},
			ExtraAuthorizeParams: map[string]string{
				"audience": "api.atlassian.com",
				"prompt":   "consent",
			},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "confluence",
			DisplayName: "Confluence",
			Endpoints: domain.Endpoints{
				AuthorizeURL: atlassianAuthorizeURL,
				TokenURL:     atlassianTokenURL,
			},
			DefaultScopes: []string{
				"read:confluence-content.all",
				"read:confluence-space.summary",
				"offline_access",
			},
			ExtraAuthorizeParams: map[string]string{
				"audience": "api.atlassian.com",
				"prompt":   "consent",
			},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "paypal",
			DisplayName: "PayPal",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://www.paypal.com/signin/authorize",
				TokenURL:     "https://api-m.paypal.com/v1/oauth2/token",
			},
			SandboxEndpoints: &domain.Endpoints{
				AuthorizeURL: "https://www.sandbox.paypal.com/signin/authorize",
				TokenURL:     "https://api-m.sandbox.paypal.com/v1/oauth2/token",
			},
			DefaultScopes: []string{
				"openid",
				"email",
				"https://uri.paypal.com/services/paypalattributes",
			},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
		{
			Name:        "notion",
			DisplayName: "Notion",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://api.notion.com/v1/oauth/authorize",
				TokenURL:     "https://api.notion.com/v1/oauth/token",
			},
			// Notion rejects a scope parameter; capabilities are set on the integration.
			ExtraAuthorizeParams: map[string]string{"owner": "user"},
			TokenRequestStyle:    domain.TokenRequestBasicAuth,
		},
		{
			Name:        "dropbox",
			DisplayName: "Dropbox",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://www.dropbox.com/oauth2/authorize",
				TokenURL:     "https://api.dropboxapi.com/oauth2/token",
			},
			DefaultScopes:        []string{"account_info.read", "files.metadata.read", "files.content.read"},
			ExtraAuthorizeParams: map[string]string{"token_access_type": "offline"},
			TokenRequestStyle:    domain.TokenRequestSecretInBody,
		},
		{
			Name:        "google",
			DisplayName: "Google",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:     "https://oauth2.googleapis.com/token",
			},
			DefaultScopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/calendar.readonly",
			},
			// Google only returns a refresh token for offline access with forced consent.
			ExtraAuthorizeParams: map[string]string{
				"access_type": "offline",
				"prompt":      "consent",
			},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
			UsePKCE:           true,
		},
		{
			Name:        "github",
			DisplayName: "GitHub",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://github.com/login/oauth/authorize",
				//nolint:gosec // G101: Not credentials, OAuth endpoint URL
				TokenURL: "https://github.com/login/oauth/access_token",
			},
			DefaultScopes:     []string{"repo", "read:user"},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "slack",
			DisplayName: "Slack",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://slack.com/oauth/v2/authorize",
				TokenURL:     "https://slack.com/api/oauth.v2.access",
			},
			DefaultScopes:     []string{"channels:read", "channels:history", "users:read"},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "hubspot",
			DisplayName: "HubSpot",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://app.hubspot.com/oauth/authorize",
				TokenURL:     "https://api.hubapi.com/oauth/v1/token",
			},
			DefaultScopes:     []string{"oauth", "crm.objects.contacts.read"},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "calendly",
			DisplayName: "Calendly",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://auth.calendly.com/oauth/authorize",
				TokenURL:     "https://auth.calendly.com/oauth/token",
			},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
		{
			Name:        "zoom",
			DisplayName: "Zoom",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://zoom.us/oauth/authorize",
				TokenURL:     "https://zoom.us/oauth/token",
			},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
		{
			Name:        "linear",
			DisplayName: "Linear",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://linear.app/oauth/authorize",
				TokenURL:     "https://api.linear.app/oauth/token",
			},
			DefaultScopes: []string{"read"},
			ExtraAuthorizeParams: map[string]string{
				"prompt": "consent",
				"actor":  "user",
			},
			TokenRequestStyle: domain.TokenRequestSecretInBody,
		},
		{
			Name:        "airtable",
			DisplayName: "Airtable",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://airtable.com/oauth2/v1/authorize",
				TokenURL:     "https://airtable.com/oauth2/v1/token",
			},
			DefaultScopes:     []string{"data.records:read", "schema.bases:read"},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
			UsePKCE:           true,
		},
		{
			Name:        "quickbooks",
			DisplayName: "QuickBooks",
			Endpoints: domain.Endpoints{
				AuthorizeURL: "https://appcenter.intuit.com/connect/oauth2",
				TokenURL:     "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer",
			},
			DefaultScopes:     []string{"com.intuit.quickbooks.accounting"},
			TokenRequestStyle: domain.TokenRequestBasicAuth,
		},
	}
}
