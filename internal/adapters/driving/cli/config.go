package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config.toml",
}

var configSetCredentialCmd = &cobra.Command{
	Use:   "set-credential [KEY]",
	Short: "Store a client credential in config.toml",
	Long: `Store a client credential under [credentials] in config.toml.

The value is read from --value or prompted for without echo. Environment
variables of the same name take precedence over the file.

Examples:
  sercha-connect config set-credential JIRA_CLIENT_ID --value abc123
  sercha-connect config set-credential JIRA_CLIENT_SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetCredential,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if credentialStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(credentialStore.Path())
		return nil
	},
}

var credentialValue string

// readSecret is replaced in tests.
var readSecret = readPassword

func init() {
	configSetCredentialCmd.Flags().StringVar(&credentialValue, "value", "", "Credential value (prompted when omitted)")

	configCmd.AddCommand(configSetCredentialCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSetCredential(cmd *cobra.Command, args []string) error {
	if credentialStore == nil {
		return errors.New("config store not configured")
	}

	key := strings.ToUpper(strings.TrimSpace(args[0]))
	if key == "" {
		return errors.New("credential key is required")
	}

	value := credentialValue
	if value == "" {
		cmd.Printf("%s: ", key)
		value = readSecret()
		cmd.Println()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("credential value is required")
	}

	if err := credentialStore.Set(driven.CredentialKeyPrefix+key, value); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	cmd.Printf("Stored %s in %s\n", key, credentialStore.Path())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
