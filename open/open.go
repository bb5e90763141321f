// Package open hands URLs and files to the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Start opens input with the default handler and returns without waiting.
func Start(input string) error {
	return StartWith(input, "")
}

// StartWith opens input with app, or the default handler when app is empty.
func StartWith(input, app string) error {
	cmd, ok := Command(runtime.GOOS, input, app)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command builds the command opening input on goos.
func Command(goos, input, app string) (*exec.Cmd, bool) {
	switch goos {
	case "windows":
		if app != "" {
			// start treats & as a command separator
			return exec.Command("cmd", "/C", "start", "", app, strings.ReplaceAll(input, "&", "^&")), true
		}
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), true
	case "darwin":
		if app != "" {
			return exec.Command("open", "-a", app, input), true
		}
		return exec.Command("open", input), true
	case "linux", "freebsd", "openbsd", "netbsd":
		if app != "" {
			return exec.Command(app, input), true
		}
		return exec.Command("xdg-open", input), true
	case "android":
		return exec.Command("termux-open", input), true
	default:
		return nil, false
	}
}
