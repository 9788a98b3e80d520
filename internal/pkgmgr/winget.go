package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Winget drives the Windows Package Manager. Manifest scanning falls back to
// the registry Uninstall keys via reg.exe, which stays reliable when winget
// sources are slow or misconfigured.
type Winget struct{}

// APPINSTALLER_CLI_ERROR_INSTALL_REBOOT_REQUIRED_TO_FINISH
const wingetRebootRequired = 0x8A15002B

var uninstallKeys = []string{
	`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`HKLM\SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
	`HKCU\Software\Microsoft\Windows\CurrentVersion\Uninstall`,
}

func (Winget) Name() string { return "winget" }

func (Winget) Available() bool {
	_, err := exec.LookPath("winget")
	return err == nil
}

func (Winget) Query(ctx context.Context, id string) (string, error) {
	return runCmd(ctx, "winget", "list", "--id", id, "--exact",
		"--disable-interactivity", "--accept-source-agreements")
}

func (Winget) Install(ctx context.Context, id string, machineWide bool) (InstallOutcome, error) {
	args := []string{"install", "--id", id, "--exact", "--silent",
		"--disable-interactivity", "--accept-package-agreements", "--accept-source-agreements"}
	if machineWide {
		args = append(args, "--scope", "machine")
	}
	out, err := runCmd(ctx, "winget", args...)
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && uint32(ee.ExitCode()) == wingetRebootRequired {
			// The package landed; it just needs a restart to finish.
			return InstallOutcome{RebootNeeded: true, Detail: "winget " + id}, nil
		}
		return InstallOutcome{}, fmt.Errorf("winget install %s: %w: %s", id, err, lastLine(out))
	}
	return InstallOutcome{RebootNeeded: rebootHinted(out), Detail: "winget " + id}, nil
}

func (Winget) ManifestMatch(ctx context.Context, pattern string) (bool, error) {
	var lastErr error
	for _, key := range uninstallKeys {
		out, err := runCmd(ctx, "reg", "query", key, "/s", "/v", "DisplayName")
		if err != nil {
			// Missing hive or access denied for this key only; keep scanning.
			lastErr = err
			continue
		}
		if matchDisplayName(out, pattern) {
			return true, nil
		}
		lastErr = nil
	}
	if lastErr != nil {
		return false, fmt.Errorf("uninstall-key scan: %w", lastErr)
	}
	return false, nil
}

// matchDisplayName scans reg.exe /v DisplayName output for a value
// containing pattern, case-insensitively.
func matchDisplayName(out, pattern string) bool {
	p := strings.ToLower(pattern)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "DisplayName") {
			continue
		}
		// Format: DisplayName    REG_SZ    Git version 2.44.0
		fields := strings.SplitN(line, "REG_SZ", 2)
		if len(fields) != 2 {
			continue
		}
		if strings.Contains(strings.ToLower(strings.TrimSpace(fields[1])), p) {
			return true
		}
	}
	return false
}

// rebootHinted catches the success-with-restart-note wording winget emits
// for a handful of installers.
func rebootHinted(out string) bool {
	low := strings.ToLower(out)
	return strings.Contains(low, "restart your") || strings.Contains(low, "reboot required")
}
