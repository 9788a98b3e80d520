package provision

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output. Tests swap it
// for a canned implementation.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// runCmd executes a command and returns combined output as string.
// A context deadline kills the child process; WaitDelay reaps children that
// ignore the kill signal so a stalled probe cannot leak.
func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Avoid opening pager or interactive prompts
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	cmd.WaitDelay = 2 * time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}

// firstLine returns the trimmed first line of s.
func firstLine(s string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(s), "\n", 2)[0])
}
