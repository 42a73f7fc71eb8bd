// Package cli provides the sercha-connect command line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-connect/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// skipWiring marks commands that run without building the application.
const skipWiring = "skip-wiring"

// tokenManager is the token surface the CLI drives.
type tokenManager interface {
	driving.TokenService
	TokenSource(ctx context.Context, provider string) oauth2.TokenSource
}

// Services used by commands. Wired from configuration before a command runs,
// or assigned directly in tests.
var (
	providerRegistry     driving.ProviderRegistry
	authorizationService driving.AuthorizationService
	tokenService         tokenManager
	credentialStore      driven.ConfigStore
	currentApp           *app
)

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
	flagStore     string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-connect",
	Short: "OAuth token broker for third-party services",
	Long: `sercha-connect connects third-party services through the OAuth 2.0
authorization-code grant and keeps their access tokens.

Run 'sercha-connect serve' to accept provider callbacks, or use the
authorize and tokens commands to manage connections from the terminal.

Client credentials are read from the environment (JIRA_CLIENT_ID,
JIRA_CLIENT_SECRET, ...) or from the [credentials] table of config.toml.`,
	SilenceUsage:       true,
	PersistentPreRunE:  wire,
	PersistentPostRunE: unwire,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&flagConfigDir, "config-dir", "", "Directory holding config.toml (default ~/.sercha-connect)")
	flags.StringVar(&flagDataDir, "data-dir", "", "Directory holding the token database (default ~/.sercha-connect/data)")
	flags.StringVar(&flagStore, "store", "", "Token store: memory or sqlite")
}

// Execute runs the root command.
// Resources are released even when a command fails, since cobra skips
// post-run hooks on error.
func Execute() error {
	err := rootCmd.Execute()
	if closeErr := unwire(nil, nil); err == nil {
		err = closeErr
	}
	return err
}

// wire builds the application from environment and flags unless services
// were already provided.
func wire(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipWiring] == "true" || providerRegistry != nil {
		return nil
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger.SetVerbose(settings.Verbose)

	a, err := newApp(settings)
	if err != nil {
		return err
	}

	currentApp = a
	providerRegistry = a.registry
	authorizationService = a.authorizations
	tokenService = a.tokens
	credentialStore = a.config
	return nil
}

// unwire releases resources opened by wire.
func unwire(_ *cobra.Command, _ []string) error {
	if currentApp == nil {
		return nil
	}
	err := currentApp.Close()
	currentApp = nil
	providerRegistry = nil
	authorizationService = nil
	tokenService = nil
	credentialStore = nil
	return err
}

// loadSettings reads the environment and applies flags on top.
func loadSettings(cmd *cobra.Command) (env.Settings, error) {
	settings, err := env.Load()
	if err != nil {
		return env.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		settings.Verbose = flagVerbose
	}
	if flags.Changed("config-dir") {
		settings.ConfigDir = flagConfigDir
	}
	if flags.Changed("data-dir") {
		settings.DataDir = flagDataDir
	}
	if flags.Changed("store") {
		settings.Store = flagStore
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		settings.Addr = serveAddr
	}

	if err := settings.Validate(); err != nil {
		return env.Settings{}, err
	}
	return settings, nil
}

// commandContext bounds a single CLI operation.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, time.Minute)
}
