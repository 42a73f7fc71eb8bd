package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-connect/internal/core/domain"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage stored provider tokens",
	Long: `List, inspect, refresh, and remove stored tokens.

Token values are masked unless --reveal is given. Use access-token to print
a current access token for scripts, refreshing it first when it is about to
expire.

Examples:
  sercha-connect tokens list
  sercha-connect tokens show jira
  sercha-connect tokens refresh jira
  curl -H "Authorization: Bearer $(sercha-connect tokens access-token jira)" ...`,
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connection status for every provider",
	RunE:  runTokensList,
}

var tokensShowCmd = &cobra.Command{
	Use:   "show [provider]",
	Short: "Show the stored token for a provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensShow,
}

var tokensRemoveCmd = &cobra.Command{
	Use:   "remove [provider]",
	Short: "Disconnect a provider by deleting its token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensRemove,
}

var tokensRefreshCmd = &cobra.Command{
	Use:   "refresh [provider]",
	Short: "Refresh a provider's token using its refresh token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensRefresh,
}

var tokensAccessTokenCmd = &cobra.Command{
	Use:   "access-token [provider]",
	Short: "Print a valid access token, refreshing if needed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensAccessToken,
}

var tokensReveal bool

func init() {
	tokensShowCmd.Flags().BoolVar(&tokensReveal, "reveal", false, "Print token values unmasked")

	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensShowCmd)
	tokensCmd.AddCommand(tokensRemoveCmd)
	tokensCmd.AddCommand(tokensRefreshCmd)
	tokensCmd.AddCommand(tokensAccessTokenCmd)
	rootCmd.AddCommand(tokensCmd)
}

func runTokensList(cmd *cobra.Command, _ []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	statuses, err := tokenService.Connections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	cmd.Printf("%-12s %-11s %-10s %-12s %s\n", "PROVIDER", "CONFIGURED", "CONNECTED", "REFRESHABLE", "EXPIRES")
	for _, s := range statuses {
		expires := "-"
		if s.ExpiresAt != nil {
			expires = s.ExpiresAt.Local().Format(time.RFC3339)
		}
		cmd.Printf("%-12s %-11s %-10s %-12s %s\n",
			s.Provider, yesNo(s.Configured), yesNo(s.Connected), yesNo(s.Refreshable), expires)
	}
	return nil
}

func runTokensShow(cmd *cobra.Command, args []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	record, err := tokenService.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s is not connected", args[0])
		}
		return fmt.Errorf("failed to get token: %w", err)
	}

	printRecord(cmd, args[0], record, tokensReveal)
	return nil
}

func runTokensRemove(cmd *cobra.Command, args []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := tokenService.Remove(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	cmd.Printf("Disconnected %s\n", args[0])
	return nil
}

func runTokensRefresh(cmd *cobra.Command, args []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	record, err := tokenService.Refresh(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", args[0], err)
	}

	cmd.Printf("Refreshed %s\n", args[0])
	printRecord(cmd, args[0], record, false)
	return nil
}

func runTokensAccessToken(cmd *cobra.Command, args []string) error {
	if tokenService == nil {
		return errors.New("token service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	tok, err := tokenService.TokenSource(ctx, args[0]).Token()
	if err != nil {
		return fmt.Errorf("failed to get access token for %s: %w", args[0], err)
	}

	cmd.Println(tok.AccessToken)
	return nil
}

func printRecord(cmd *cobra.Command, provider string, record *domain.TokenRecord, reveal bool) {
	show := maskToken
	if reveal {
		show = func(s string) string { return s }
	}

	cmd.Printf("Provider:      %s\n", provider)
	cmd.Printf("Access token:  %s\n", show(record.AccessToken))
	if record.HasRefreshToken() {
		cmd.Printf("Refresh token: %s\n", show(record.RefreshToken))
	} else {
		cmd.Printf("Refresh token: (none)\n")
	}
	if record.TokenType != "" {
		cmd.Printf("Type:          %s\n", record.TokenType)
	}
	if record.Scope != "" {
		cmd.Printf("Scope:         %s\n", record.Scope)
	}
	if record.ExpiresAt != nil {
		cmd.Printf("Expires:       %s\n", record.ExpiresAt.Local().Format(time.RFC3339))
	} else {
		cmd.Printf("Expires:       never reported\n")
	}
	if !record.ObtainedAt.IsZero() {
		cmd.Printf("Obtained:      %s\n", record.ObtainedAt.Local().Format(time.RFC3339))
	}
	if len(record.Extra) > 0 {
		keys := make([]string, 0, len(record.Extra))
		for k := range record.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("Extra:")
		for _, k := range keys {
			cmd.Printf("  %s: %v\n", k, record.Extra[k])
		}
	}
}

// maskToken hides all but the ends of a secret.
func maskToken(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
