package provision

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"envctl/internal/pkgmgr"
)

// Outcome is a single probe's verdict. Installed=false with Err=nil is
// "inconclusive": the probe could not confirm presence or absence, and the
// resolver moves on to the next signal source. Err marks an unexpected probe
// failure, which is logged and also treated as inconclusive.
type Outcome struct {
	Installed bool
	Detail    string
	Err       error
}

// Probe is one independent installation signal source. Probes are composed
// by the resolver in order from cheapest to most expensive.
type Probe interface {
	Name() string
	Source() Source
	Probe(ctx context.Context, t ToolSpec) Outcome
}

// localCommandProbe runs the tool's own binary with its version arguments.
// Cheap, and authoritative when positive.
type localCommandProbe struct {
	run Runner
}

func (localCommandProbe) Name() string   { return "local-command" }
func (localCommandProbe) Source() Source { return SourceLocalCommand }

func (p localCommandProbe) Probe(ctx context.Context, t ToolSpec) Outcome {
	if t.LocalCommand == "" {
		return Outcome{}
	}
	path, err := exec.LookPath(t.LocalCommand)
	if err != nil {
		// Absence of the binary is not an error, just no signal.
		return Outcome{}
	}
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	out, err := p.run(cctx, path, t.VersionArgs...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{}
		}
		return Outcome{Err: fmt.Errorf("%s %s: %w", t.LocalCommand, strings.Join(t.VersionArgs, " "), err)}
	}
	// Some tools print nothing for --version; the binary existing and
	// exiting zero is still a confirmed positive.
	return Outcome{Installed: true, Detail: firstLine(xansi.Strip(out))}
}

// managerQueryProbe asks the package manager about each candidate id in
// preference order. Every query is wall-clock bounded; a stalled manager
// says nothing about the package, so a timeout degrades to inconclusive.
type managerQueryProbe struct {
	mgr     pkgmgr.Manager
	timeout time.Duration
}

func (managerQueryProbe) Name() string   { return "manager-query" }
func (managerQueryProbe) Source() Source { return SourceManagerQuery }

func (p managerQueryProbe) Probe(ctx context.Context, t ToolSpec) Outcome {
	if p.mgr == nil || len(t.CandidateIDs) == 0 {
		return Outcome{}
	}
	for _, id := range t.CandidateIDs {
		cctx, cancel := context.WithTimeout(ctx, p.timeout)
		out, err := p.mgr.Query(cctx, id)
		cancel()
		if err != nil {
			// Timeouts and non-zero exits both mean "no signal for this id";
			// the manager not knowing an id is a normal negative.
			continue
		}
		if strings.Contains(xansi.Strip(out), id) {
			return Outcome{Installed: true, Detail: fmt.Sprintf("%s: %s", p.mgr.Name(), id)}
		}
	}
	return Outcome{}
}

// manifestScanProbe scans the OS installed-software manifest for the tool's
// display-name pattern. Least precise: a hit carries no version detail.
type manifestScanProbe struct {
	mgr pkgmgr.Manager
}

func (manifestScanProbe) Name() string   { return "manifest-scan" }
func (manifestScanProbe) Source() Source { return SourceManifestScan }

func (p manifestScanProbe) Probe(ctx context.Context, t ToolSpec) Outcome {
	if p.mgr == nil || t.ManifestPattern == "" {
		return Outcome{}
	}
	ok, err := p.mgr.ManifestMatch(ctx, t.ManifestPattern)
	if err != nil {
		return Outcome{Err: fmt.Errorf("manifest scan for %q: %w", t.ManifestPattern, err)}
	}
	if ok {
		return Outcome{Installed: true, Detail: fmt.Sprintf("manifest entry matching %q", t.ManifestPattern)}
	}
	return Outcome{}
}
