package cli

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenBrowser opens target in the browser named by $BROWSER, falling back to
// the platform default.
func OpenBrowser(target string) error {
	var cmd *exec.Cmd

	if browser := os.Getenv("BROWSER"); browser != "" {
		cmd = exec.Command(browser, target) //nolint:gosec // G204: user-chosen browser
		return cmd.Start()
	}

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
