package provision

import (
	"errors"
	"fmt"
)

// Status is the terminal state of one resolution.
type Status string

const (
	StatusInstalled    Status = "installed"
	StatusNotInstalled Status = "not-installed"
	// StatusCheckNeeded means a probe failed unexpectedly and absence was
	// never confirmed, so the run cannot assert not-installed.
	StatusCheckNeeded Status = "check-needed"
	// StatusWrongScope means a module is present but only under a user-scope
	// path instead of the expected machine-wide one.
	StatusWrongScope Status = "wrong-scope"
)

// Source identifies which signal source produced a positive resolution.
type Source string

const (
	SourceLocalCommand Source = "local-command"
	SourceManagerQuery Source = "manager-query"
	SourceManifestScan Source = "manifest-scan"
	SourceNone         Source = "none"
)

// ToolSpec describes one logical tool and every signal source usable to
// detect it.
type ToolSpec struct {
	Name string `json:"name"`
	// CandidateIDs are acceptable package ids for the same tool, in
	// preference order.
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	LocalCommand string   `json:"local_command,omitempty"`
	VersionArgs  []string `json:"version_args,omitempty"`
	// ManifestPattern is the installed-software display-name substring used
	// by the last-resort manifest scan.
	ManifestPattern string   `json:"manifest_pattern,omitempty"`
	MachineWide     bool     `json:"machine_wide,omitempty"`
	Aliases         []string `json:"aliases,omitempty"`
}

// Validate rejects specs with no usable signal source.
func (t ToolSpec) Validate() error {
	if t.Name == "" {
		return errors.New("tool spec needs a name")
	}
	if len(t.CandidateIDs) == 0 && t.LocalCommand == "" {
		return fmt.Errorf("tool %s: needs candidate ids or a local command", t.Name)
	}
	return nil
}

// ModuleSpec describes one PowerShell module and the path fragment that
// marks a machine-wide install.
type ModuleSpec struct {
	Name         string `json:"name"`
	PathFragment string `json:"path_fragment"`
}

// Resolution is the outcome of a single resolution attempt. It is computed
// fresh from live system state on every run and never persisted.
type Resolution struct {
	Tool   string `json:"tool"`
	Status Status `json:"status"`
	Source Source `json:"source"`
	Detail string `json:"detail,omitempty"`
	// Version is the normalized version extracted from the positive signal,
	// when one appears in it.
	Version string `json:"version,omitempty"`
}

// Installed reports a confirmed-positive resolution.
func (r Resolution) Installed() bool { return r.Status == StatusInstalled }

// Report aggregates one verification or apply pass. RebootNeeded is the
// explicit accumulator OR-ed from every install outcome in the run.
type Report struct {
	Results      []Resolution `json:"results"`
	Failed       []string     `json:"failed,omitempty"`
	RebootNeeded bool         `json:"reboot_needed,omitempty"`
}

// OK reports whether the pass finished without install failures.
func (rep Report) OK() bool { return len(rep.Failed) == 0 }
