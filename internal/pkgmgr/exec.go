package pkgmgr

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// runCmd executes a command and returns combined output as string.
// A context deadline kills the child; WaitDelay reaps children that
// ignore the kill and would otherwise leak.
func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Avoid pagers and interactive prompts in package-manager children
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "DEBIAN_FRONTEND=noninteractive")
	cmd.WaitDelay = 2 * time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}

// lastLine returns the trimmed last non-empty line of out, for error detail.
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}
