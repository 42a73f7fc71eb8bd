package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize [provider]",
	Short: "Print the authorization URL for a provider",
	Long: `Start an authorization and print the provider's consent URL.

The provider redirects back to <redirect base>/oauth/callback/<provider>, so
'sercha-connect serve' must be reachable there and share this token store.

Examples:
  sercha-connect authorize jira
  sercha-connect authorize google --open`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorize,
}

var authorizeOpen bool

// openURL is replaced in tests.
var openURL = OpenBrowser

func init() {
	authorizeCmd.Flags().BoolVar(&authorizeOpen, "open", false, "Open the URL in the default browser")
	rootCmd.AddCommand(authorizeCmd)
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	if authorizationService == nil {
		return errors.New("authorization service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	req, err := authorizationService.Start(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			return fmt.Errorf("unknown provider: %s (see 'sercha-connect providers list')", args[0])
		}
		return err
	}

	cmd.Printf("Authorize %s by visiting:\n\n  %s\n\n", req.Provider, req.URL)
	cmd.Printf("The provider will redirect to %s\n", req.RedirectURI)

	if authorizeOpen {
		if err := openURL(req.URL); err != nil {
			cmd.Printf("Could not open browser: %v\n", err)
		}
	}
	return nil
}
