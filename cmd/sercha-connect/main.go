// Command sercha-connect is an OAuth 2.0 token broker for third-party services.
package main

import (
	"os"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
