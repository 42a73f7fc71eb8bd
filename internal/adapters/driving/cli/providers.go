package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the provider catalogue",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported providers and whether they are configured",
	RunE:  runProvidersList,
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	rootCmd.AddCommand(providersCmd)
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	if providerRegistry == nil {
		return errors.New("provider registry not configured")
	}

	descriptors := providerRegistry.List()
	if len(descriptors) == 0 {
		cmd.Println("No providers registered.")
		return nil
	}

	cmd.Printf("%-12s %-12s %-11s %s\n", "NAME", "DISPLAY", "CONFIGURED", "SCOPES")
	for _, d := range descriptors {
		configured := "no"
		if providerRegistry.Configured(d) {
			configured = "yes"
		}
		scopes := strings.Join(d.DefaultScopes, " ")
		if scopes == "" {
			scopes = "-"
		}
		cmd.Printf("%-12s %-12s %-11s %s\n", d.Name, d.DisplayName, configured, scopes)
	}
	return nil
}
