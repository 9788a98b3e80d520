package pkgmgr

import (
	"context"
	"errors"
)

// InstallOutcome reports what an install left behind. RebootNeeded is
// aggregated across the whole run by the caller; nothing here mutates
// process-wide state.
type InstallOutcome struct {
	RebootNeeded bool   `json:"reboot_needed,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// Manager is one package-manager family (apt, snap, winget). Implementations
// shell out to the real binary. Query must honor the caller's context
// deadline: a deadline hit means "no signal", never "not installed".
type Manager interface {
	Name() string
	Available() bool
	// Query asks the manager about one package id and returns combined output.
	Query(ctx context.Context, id string) (string, error)
	// Install installs one package id, machine-wide when the manager
	// distinguishes scopes.
	Install(ctx context.Context, id string, machineWide bool) (InstallOutcome, error)
	// ManifestMatch scans the manager's installed-software manifest for a
	// display name containing pattern.
	ManifestMatch(ctx context.Context, pattern string) (bool, error)
}

// ErrNoManager means no supported package manager binary exists on this
// host. It is fatal for the whole run: nothing can be queried or installed.
var ErrNoManager = errors.New("no supported package manager found (need winget, apt or snap)")

// Detect returns the preferred package manager for this host.
func Detect() (Manager, error) {
	for _, m := range []Manager{Winget{}, Apt{}, Snap{}} {
		if m.Available() {
			return m, nil
		}
	}
	return nil, ErrNoManager
}
