package pkgmgr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Snap drives snapd. It ranks below apt in Detect because snap hosts
// practically always carry apt too.
type Snap struct{}

func (Snap) Name() string { return "snap" }

func (Snap) Available() bool {
	_, err := exec.LookPath("snap")
	return err == nil
}

func (Snap) Query(ctx context.Context, id string) (string, error) {
	return runCmd(ctx, "snap", "list", id)
}

func (Snap) Install(ctx context.Context, id string, machineWide bool) (InstallOutcome, error) {
	// snaps are system-wide by nature; machineWide is implied.
	out, err := runCmd(ctx, "snap", "install", id)
	if err != nil && needsClassic(out) {
		out, err = runCmd(ctx, "snap", "install", "--classic", id)
	}
	if err != nil {
		return InstallOutcome{}, fmt.Errorf("snap install %s: %w: %s", id, err, lastLine(out))
	}
	return InstallOutcome{Detail: "snap " + id}, nil
}

func (Snap) ManifestMatch(ctx context.Context, pattern string) (bool, error) {
	out, err := runCmd(ctx, "snap", "list")
	if err != nil {
		return false, fmt.Errorf("snap list: %w", err)
	}
	p := strings.ToLower(pattern)
	for i, line := range strings.Split(out, "\n") {
		if i == 0 {
			continue // header row
		}
		if strings.Contains(strings.ToLower(line), p) {
			return true, nil
		}
	}
	return false, nil
}

// needsClassic recognizes snapd's refusal to install a classic-confinement
// snap without the flag.
func needsClassic(out string) bool {
	return strings.Contains(out, "--classic")
}
