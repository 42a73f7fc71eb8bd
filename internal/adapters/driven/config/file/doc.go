// Package file provides the TOML configuration file adapter.
//
// The file carries client credentials and per-provider overrides:
//
//	[credentials]
//	JIRA_CLIENT_ID = "..."
//	JIRA_CLIENT_SECRET = "..."
//
//	[providers.paypal]
//	sandbox = true
//	scopes = ["openid", "email"]
//
// Credentials are read at lookup time, so a running server picks up edits
// once Watch has reloaded the file.
package file
