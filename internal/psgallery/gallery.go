package psgallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ModuleInstall is one installed copy of a PowerShell module. A module can
// be installed several times under different scopes (user vs machine paths).
type ModuleInstall struct {
	Version string `json:"Version"`
	Path    string `json:"Path"`
}

// Gallery lists and installs PowerShell modules.
type Gallery interface {
	Available() bool
	List(ctx context.Context, name string) ([]ModuleInstall, error)
	Install(ctx context.Context, name string, allUsers bool) error
}

// ErrNoGallery means no PowerShell host exists, so module operations are
// impossible on this machine.
var ErrNoGallery = errors.New("powershell not found; module gallery unavailable")

// Detect returns the host gallery, or nil when no PowerShell is installed.
// Verification degrades gracefully without one; installs require it.
func Detect() Gallery {
	for _, shell := range []string{"pwsh", "powershell"} {
		if _, err := exec.LookPath(shell); err == nil {
			return Pwsh{Shell: shell}
		}
	}
	return nil
}

// Pwsh shells out to a PowerShell host for PSGallery operations.
type Pwsh struct {
	Shell string // "pwsh" or "powershell"
}

func (g Pwsh) shell() string {
	if g.Shell == "" {
		return "pwsh"
	}
	return g.Shell
}

func (g Pwsh) Available() bool {
	_, err := exec.LookPath(g.shell())
	return err == nil
}

func (g Pwsh) List(ctx context.Context, name string) ([]ModuleInstall, error) {
	// ToString() flattens the Version object so ConvertTo-Json stays simple.
	script := fmt.Sprintf(
		"Get-Module -ListAvailable -Name '%s' | Select-Object @{n='Version';e={$_.Version.ToString()}}, Path | ConvertTo-Json -Compress",
		name)
	out, err := runCmd(ctx, g.shell(), "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return nil, fmt.Errorf("list module %s: %w", name, err)
	}
	return parseModuleList(out)
}

func (g Pwsh) Install(ctx context.Context, name string, allUsers bool) error {
	scope := "CurrentUser"
	if allUsers {
		scope = "AllUsers"
	}
	script := fmt.Sprintf(
		"$ErrorActionPreference = 'Stop'; Install-Module -Name '%s' -Scope %s -Force -AllowClobber",
		name, scope)
	out, err := runCmd(ctx, g.shell(), "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return fmt.Errorf("install module %s (%s): %w: %s", name, scope, err, firstLine(out))
	}
	return nil
}

// parseModuleList tolerates ConvertTo-Json emitting a bare object for a
// single result, an array otherwise, and nothing at all when absent.
func parseModuleList(out string) ([]ModuleInstall, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "{") {
		var one ModuleInstall
		if err := json.Unmarshal([]byte(s), &one); err != nil {
			return nil, fmt.Errorf("parse module list: %w", err)
		}
		return []ModuleInstall{one}, nil
	}
	var many []ModuleInstall
	if err := json.Unmarshal([]byte(s), &many); err != nil {
		return nil, fmt.Errorf("parse module list: %w", err)
	}
	return many, nil
}

// runCmd executes a command and returns combined output as string.
func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	cmd.WaitDelay = 2 * time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}

func firstLine(out string) string {
	return strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]
}
