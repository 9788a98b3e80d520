package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Apt drives dpkg/apt-get on Debian-family hosts.
type Apt struct{}

func (Apt) Name() string { return "apt" }

func (Apt) Available() bool {
	_, err := exec.LookPath("apt-get")
	return err == nil
}

// Query reports the dpkg record for id. dpkg keeps removed-but-configured
// packages in its database and still exits 0 for them, so records whose
// status is not "installed" are dropped from the output.
func (Apt) Query(ctx context.Context, id string) (string, error) {
	out, err := runCmd(ctx, "dpkg-query", "-W", "-f", "${Package} ${Version} ${Status}\n", id)
	if err != nil {
		return out, err
	}
	return dpkgInstalledOnly(out), nil
}

// dpkgInstalledOnly keeps the query lines whose status field ends in
// "installed" ("install ok installed"); deinstall/config-files,
// half-installed and unpacked records are not presence.
func dpkgInstalledOnly(out string) string {
	var b strings.Builder
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(strings.TrimSpace(line), " installed") {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (Apt) Install(ctx context.Context, id string, machineWide bool) (InstallOutcome, error) {
	// apt installs are always system-wide; machineWide is implied.
	out, err := runCmd(ctx, "apt-get", "install", "-y", id)
	if err != nil {
		return InstallOutcome{}, fmt.Errorf("apt-get install %s: %w: %s", id, err, lastLine(out))
	}
	o := InstallOutcome{Detail: "apt " + id}
	// Kernel/libc style packages leave a marker when a restart is pending.
	if _, statErr := os.Stat("/var/run/reboot-required"); statErr == nil {
		o.RebootNeeded = true
	}
	return o, nil
}

func (Apt) ManifestMatch(ctx context.Context, pattern string) (bool, error) {
	out, err := runCmd(ctx, "dpkg-query", "-W", "-f", "${Package}\t${Status}\n")
	if err != nil {
		return false, fmt.Errorf("dpkg-query manifest scan: %w", err)
	}
	return dpkgManifestContains(out, pattern), nil
}

// dpkgManifestContains matches pattern against installed package names only;
// dpkg keeps removed-but-configured entries around.
func dpkgManifestContains(out, pattern string) bool {
	p := strings.ToLower(pattern)
	for _, line := range strings.Split(out, "\n") {
		name, status, ok := strings.Cut(line, "\t")
		if !ok || !strings.Contains(status, "installed") {
			continue
		}
		if strings.Contains(strings.ToLower(name), p) {
			return true
		}
	}
	return false
}
