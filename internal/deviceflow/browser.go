package deviceflow

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// NoBrowserFromEnv reports whether PULSE_NO_BROWSER is set.
func NoBrowserFromEnv() bool {
	v := os.Getenv("PULSE_NO_BROWSER")
	return v != "" && v != "0" && v != "false"
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
