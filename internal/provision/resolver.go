package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"

	"envctl/internal/pkgmgr"
	"envctl/internal/psgallery"
	"envctl/internal/system"
)

// ErrInstallFailed marks a per-item hard failure: the install call failed for
// every candidate, or the post-install re-resolution still found nothing.
// The run continues to the next item; the process exit reflects the failure.
var ErrInstallFailed = errors.New("install failed")

// DefaultQueryTimeout bounds each package-manager query.
const DefaultQueryTimeout = 8 * time.Second

// Resolver reconciles the three installation signal sources into one
// Resolution per tool, and performs installs with a single
// confirm-after-install re-resolution.
type Resolver struct {
	Manager      pkgmgr.Manager
	Gallery      psgallery.Gallery
	QueryTimeout time.Duration
	Log          *clog.Logger

	// overrides for tests
	run    Runner
	probes []Probe
}

// NewResolver wires a resolver to the host collaborators. gallery may be nil
// when no PowerShell exists; module resolution then degrades to CheckNeeded.
func NewResolver(mgr pkgmgr.Manager, gallery psgallery.Gallery) *Resolver {
	return &Resolver{
		Manager:      mgr,
		Gallery:      gallery,
		QueryTimeout: DefaultQueryTimeout,
		Log:          system.Logger,
	}
}

func (r *Resolver) logger() *clog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return system.Logger
}

func (r *Resolver) runner() Runner {
	if r.run != nil {
		return r.run
	}
	return runCmd
}

func (r *Resolver) timeout() time.Duration {
	if r.QueryTimeout > 0 {
		return r.QueryTimeout
	}
	return DefaultQueryTimeout
}

// probeChain lists the signal sources in precedence order: cheapest and most
// precise first, so a positive short-circuits the expensive ones.
func (r *Resolver) probeChain() []Probe {
	if r.probes != nil {
		return r.probes
	}
	return []Probe{
		localCommandProbe{run: r.runner()},
		managerQueryProbe{mgr: r.Manager, timeout: r.timeout()},
		manifestScanProbe{mgr: r.Manager},
	}
}

// Resolve determines the installation state of one tool. The first positive
// probe wins and later probes never run. A probe error is logged and treated
// as inconclusive; if any probe erred and none was positive, the terminal
// status is CheckNeeded rather than a confident NotInstalled.
func (r *Resolver) Resolve(ctx context.Context, t ToolSpec) Resolution {
	res := Resolution{Tool: t.Name, Status: StatusNotInstalled, Source: SourceNone}
	if err := t.Validate(); err != nil {
		res.Status = StatusCheckNeeded
		res.Detail = err.Error()
		return res
	}
	degraded := false
	for _, p := range r.probeChain() {
		out := p.Probe(ctx, t)
		if out.Err != nil {
			r.logger().Warn("probe failed", "tool", t.Name, "probe", p.Name(), "err", out.Err)
			degraded = true
			continue
		}
		if out.Installed {
			res.Status = StatusInstalled
			res.Source = p.Source()
			res.Detail = out.Detail
			res.Version = ParseVersion(out.Detail)
			return res
		}
	}
	if degraded {
		res.Status = StatusCheckNeeded
		res.Detail = "a probe failed; absence not confirmed"
	}
	return res
}

// EnsureInstalled resolves t and, when absent, installs the first candidate
// id that succeeds, then re-resolves once to confirm. Already-installed
// tools trigger zero install calls.
func (r *Resolver) EnsureInstalled(ctx context.Context, t ToolSpec) (Resolution, pkgmgr.InstallOutcome, error) {
	res := r.Resolve(ctx, t)
	if res.Status != StatusNotInstalled {
		return res, pkgmgr.InstallOutcome{}, nil
	}
	if r.Manager == nil || len(t.CandidateIDs) == 0 {
		return res, pkgmgr.InstallOutcome{}, fmt.Errorf("%s: nothing to install with: %w", t.Name, ErrInstallFailed)
	}
	var outcome pkgmgr.InstallOutcome
	var lastErr error
	installed := false
	for _, id := range t.CandidateIDs {
		o, err := r.Manager.Install(ctx, id, t.MachineWide)
		if err != nil {
			r.logger().Warn("install candidate failed", "tool", t.Name, "id", id, "err", err)
			lastErr = err
			continue
		}
		outcome = o
		installed = true
		break
	}
	if !installed {
		return res, outcome, fmt.Errorf("%s: every candidate failed (last: %v): %w", t.Name, lastErr, ErrInstallFailed)
	}
	res = r.Resolve(ctx, t)
	if res.Status == StatusNotInstalled {
		return res, outcome, fmt.Errorf("%s: install reported success but tool is still absent: %w", t.Name, ErrInstallFailed)
	}
	return res, outcome, nil
}

// ResolveModule lists installed copies of a PowerShell module. Present under
// the machine-wide path fragment means Installed; present only elsewhere is
// the explicit degraded WrongScope state; nothing found is NotInstalled.
func (r *Resolver) ResolveModule(ctx context.Context, m ModuleSpec) Resolution {
	res := Resolution{Tool: m.Name, Status: StatusNotInstalled, Source: SourceNone}
	if r.Gallery == nil {
		res.Status = StatusCheckNeeded
		res.Detail = psgallery.ErrNoGallery.Error()
		return res
	}
	installs, err := r.Gallery.List(ctx, m.Name)
	if err != nil {
		r.logger().Warn("module listing failed", "module", m.Name, "err", err)
		res.Status = StatusCheckNeeded
		res.Detail = err.Error()
		return res
	}
	if len(installs) == 0 {
		return res
	}
	frag := strings.ToLower(m.PathFragment)
	best := -1
	for i, in := range installs {
		if frag != "" && !strings.Contains(strings.ToLower(in.Path), frag) {
			continue
		}
		// Side-by-side copies are common after upgrades; report the newest.
		if best < 0 || VersionLess(installs[best].Version, in.Version) {
			best = i
		}
	}
	if best >= 0 {
		res.Status = StatusInstalled
		res.Source = SourceManagerQuery
		res.Detail = installs[best].Version
		res.Version = NormalizeVersion(installs[best].Version)
		return res
	}
	res.Status = StatusWrongScope
	res.Source = SourceManagerQuery
	res.Detail = fmt.Sprintf("found at %s, expected a path containing %q", installs[0].Path, m.PathFragment)
	return res
}

// EnsureModule installs a module machine-wide when absent, with the same
// confirm-after-install contract as tools. A WrongScope module is left
// alone: it is present, just not where expected.
func (r *Resolver) EnsureModule(ctx context.Context, m ModuleSpec) (Resolution, error) {
	if r.Gallery == nil {
		return Resolution{Tool: m.Name, Status: StatusCheckNeeded, Source: SourceNone},
			psgallery.ErrNoGallery
	}
	res := r.ResolveModule(ctx, m)
	if res.Status != StatusNotInstalled {
		return res, nil
	}
	if err := r.Gallery.Install(ctx, m.Name, true); err != nil {
		r.logger().Warn("module install failed", "module", m.Name, "err", err)
		return res, fmt.Errorf("%s: %v: %w", m.Name, err, ErrInstallFailed)
	}
	res = r.ResolveModule(ctx, m)
	if res.Status == StatusNotInstalled {
		return res, fmt.Errorf("%s: install reported success but module is still absent: %w", m.Name, ErrInstallFailed)
	}
	return res, nil
}

// VerifyAll resolves every tool and module without installing anything.
// Items are resolved strictly one at a time; a failure in one item never
// aborts the rest.
func (r *Resolver) VerifyAll(ctx context.Context, tools []ToolSpec, modules []ModuleSpec) Report {
	var rep Report
	for _, t := range tools {
		rep.Results = append(rep.Results, r.Resolve(ctx, t))
	}
	for _, m := range modules {
		rep.Results = append(rep.Results, r.ResolveModule(ctx, m))
	}
	return rep
}

// ApplyAll ensure-installs every tool and module. Per-item install failures
// are recorded and the pass continues; RebootNeeded aggregates every install
// outcome of the run.
func (r *Resolver) ApplyAll(ctx context.Context, tools []ToolSpec, modules []ModuleSpec) Report {
	var rep Report
	for _, t := range tools {
		res, out, err := r.EnsureInstalled(ctx, t)
		if err != nil {
			rep.Failed = append(rep.Failed, t.Name)
			if res.Detail == "" {
				res.Detail = err.Error()
			}
		}
		rep.RebootNeeded = rep.RebootNeeded || out.RebootNeeded
		rep.Results = append(rep.Results, res)
	}
	for _, m := range modules {
		res, err := r.EnsureModule(ctx, m)
		if err != nil {
			rep.Failed = append(rep.Failed, m.Name)
			if res.Detail == "" {
				res.Detail = err.Error()
			}
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}
