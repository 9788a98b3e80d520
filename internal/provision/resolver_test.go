package provision

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"

	"envctl/internal/pkgmgr"
	"envctl/internal/psgallery"
	tu "envctl/internal/testutil"
)

// fakeManager is a scriptable pkgmgr.Manager. Query honors the context so
// timeout behavior can be exercised with a configurable stall.
type fakeManager struct {
	queryOut    map[string]string
	queryErr    map[string]error
	queryStall  time.Duration
	queries     int
	manifestHit bool
	manifestErr error
	scans       int
	installErr  map[string]error
	installs    []string
	reboot      bool
}

func (f *fakeManager) Name() string    { return "fake" }
func (f *fakeManager) Available() bool { return true }

func (f *fakeManager) Query(ctx context.Context, id string) (string, error) {
	f.queries++
	if f.queryStall > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.queryStall):
		}
	}
	if err := f.queryErr[id]; err != nil {
		return "", err
	}
	if out, ok := f.queryOut[id]; ok {
		return out, nil
	}
	return "", errors.New("exit status 1")
}

func (f *fakeManager) Install(ctx context.Context, id string, machineWide bool) (pkgmgr.InstallOutcome, error) {
	f.installs = append(f.installs, id)
	if err := f.installErr[id]; err != nil {
		return pkgmgr.InstallOutcome{}, err
	}
	if f.queryOut == nil {
		f.queryOut = map[string]string{}
	}
	f.queryOut[id] = id + " 1.0.0 install ok installed"
	return pkgmgr.InstallOutcome{RebootNeeded: f.reboot, Detail: "fake " + id}, nil
}

func (f *fakeManager) ManifestMatch(ctx context.Context, pattern string) (bool, error) {
	f.scans++
	return f.manifestHit, f.manifestErr
}

type fakeGallery struct {
	installs   []psgallery.ModuleInstall
	listErr    error
	installErr error
	installed  int
}

func (g *fakeGallery) Available() bool { return true }

func (g *fakeGallery) List(ctx context.Context, name string) ([]psgallery.ModuleInstall, error) {
	return g.installs, g.listErr
}

func (g *fakeGallery) Install(ctx context.Context, name string, allUsers bool) error {
	g.installed++
	if g.installErr != nil {
		return g.installErr
	}
	g.installs = append(g.installs, psgallery.ModuleInstall{
		Version: "1.0.0",
		Path:    "/usr/local/share/powershell/Modules/" + name + "/1.0.0/" + name + ".psd1",
	})
	return nil
}

func quietResolver(mgr pkgmgr.Manager, gal psgallery.Gallery) *Resolver {
	r := NewResolver(mgr, gal)
	r.Log = clog.New(io.Discard)
	return r
}

func TestResolve_LocalCommandShortCircuits(t *testing.T) {
	dir := t.TempDir()
	tu.StubCommand(t, dir, "git", "git version 2.40.0", 0)
	defer tu.WithEnv(t, "PATH", dir)()

	mgr := &fakeManager{manifestHit: true}
	r := quietResolver(mgr, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:            "Git",
		CandidateIDs:    []string{"git"},
		LocalCommand:    "git",
		VersionArgs:     []string{"--version"},
		ManifestPattern: "git",
	})

	if res.Status != StatusInstalled || res.Source != SourceLocalCommand {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.Detail != "git version 2.40.0" {
		t.Fatalf("unexpected detail: %q", res.Detail)
	}
	if res.Version != "2.40.0" {
		t.Fatalf("version not extracted from probe output: %q", res.Version)
	}
	if mgr.queries != 0 || mgr.scans != 0 {
		t.Fatalf("later probes ran after a positive: queries=%d scans=%d", mgr.queries, mgr.scans)
	}
}

func TestResolve_ManagerQueryHit(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())() // no binaries anywhere

	mgr := &fakeManager{queryOut: map[string]string{"azure-cli": "azure-cli 2.60.0 install ok installed"}}
	r := quietResolver(mgr, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:         "Azure CLI",
		CandidateIDs: []string{"azure-cli"},
	})

	if res.Status != StatusInstalled || res.Source != SourceManagerQuery {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolve_CandidatesTriedInOrder(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{queryOut: map[string]string{"docker-ce": "docker-ce 26.0 installed"}}
	r := quietResolver(mgr, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:         "Docker",
		CandidateIDs: []string{"docker.io", "docker-ce"},
	})

	if res.Status != StatusInstalled {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if mgr.queries != 2 {
		t.Fatalf("expected both candidates queried, got %d", mgr.queries)
	}
}

func TestResolve_TimeoutFallsThroughToManifestScan(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{queryStall: 200 * time.Millisecond, manifestHit: true}
	r := quietResolver(mgr, nil)
	r.QueryTimeout = 10 * time.Millisecond
	res := r.Resolve(context.Background(), ToolSpec{
		Name:            "VS Code",
		CandidateIDs:    []string{"code"},
		ManifestPattern: "Visual Studio Code",
	})

	// A stalled manager is inconclusive, not a negative: the manifest scan
	// must still get its say.
	if res.Status != StatusInstalled || res.Source != SourceManifestScan {
		t.Fatalf("unexpected resolution after timeout: %+v", res)
	}
	if mgr.scans != 1 {
		t.Fatalf("manifest scan did not run after query timeout")
	}
}

func TestResolve_StalledQueryAndNoManifestMatch(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{queryStall: 200 * time.Millisecond}
	r := quietResolver(mgr, nil)
	r.QueryTimeout = 10 * time.Millisecond
	res := r.Resolve(context.Background(), ToolSpec{
		Name:            "Bicep",
		CandidateIDs:    []string{"bicep"},
		ManifestPattern: "Bicep CLI",
	})

	if res.Status != StatusNotInstalled || res.Source != SourceNone {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolve_ProbeFailureYieldsCheckNeeded(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{manifestErr: errors.New("registry hive unreadable")}
	r := quietResolver(mgr, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:            "Git",
		CandidateIDs:    []string{"git"},
		ManifestPattern: "git",
	})

	if res.Status != StatusCheckNeeded {
		t.Fatalf("expected check-needed after probe failure, got %+v", res)
	}
}

func TestResolve_BrokenLocalCommandIsInconclusive(t *testing.T) {
	dir := t.TempDir()
	tu.StubCommand(t, dir, "az", "segfault", 139)
	defer tu.WithEnv(t, "PATH", dir)()

	// The broken binary is a ProbeFailure, not a negative: the manager query
	// still runs and its positive wins.
	mgr := &fakeManager{queryOut: map[string]string{"azure-cli": "azure-cli 2.60.0 installed"}}
	r := quietResolver(mgr, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:         "Azure CLI",
		CandidateIDs: []string{"azure-cli"},
		LocalCommand: "az",
		VersionArgs:  []string{"version"},
	})
	if res.Status != StatusInstalled || res.Source != SourceManagerQuery {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolve_RemovedDpkgRecordIsNotInstalled(t *testing.T) {
	dir := t.TempDir()
	// dpkg answers exit 0 for removed-but-configured packages, echoing the
	// name back; that must not resolve as installed.
	tu.StubCommand(t, dir, "dpkg-query", "git 1:2.40.0 deinstall ok config-files", 0)
	defer tu.WithEnv(t, "PATH", dir)()

	r := quietResolver(pkgmgr.Apt{}, nil)
	res := r.Resolve(context.Background(), ToolSpec{
		Name:         "Git",
		CandidateIDs: []string{"git"},
	})
	if res.Status != StatusNotInstalled {
		t.Fatalf("removed package resolved as %+v", res)
	}
}

func TestResolve_InvalidSpec(t *testing.T) {
	r := quietResolver(&fakeManager{}, nil)
	res := r.Resolve(context.Background(), ToolSpec{Name: "Broken"})
	if res.Status != StatusCheckNeeded {
		t.Fatalf("expected check-needed for invalid spec, got %+v", res)
	}
}

func TestEnsureInstalled_Idempotent(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{queryOut: map[string]string{"gh": "gh 2.49.0 installed"}}
	r := quietResolver(mgr, nil)
	spec := ToolSpec{Name: "GitHub CLI", CandidateIDs: []string{"gh"}}

	for i := 0; i < 2; i++ {
		res, _, err := r.EnsureInstalled(context.Background(), spec)
		if err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
		if res.Status != StatusInstalled {
			t.Fatalf("pass %d: unexpected resolution: %+v", i+1, res)
		}
	}
	if len(mgr.installs) != 0 {
		t.Fatalf("installed an already-installed tool: %v", mgr.installs)
	}
}

func TestEnsureInstalled_FirstCandidateFailsSecondSucceeds(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{
		queryOut:   map[string]string{},
		installErr: map[string]error{"docker.io": errors.New("no candidate")},
		reboot:     true,
	}
	r := quietResolver(mgr, nil)
	res, out, err := r.EnsureInstalled(context.Background(), ToolSpec{
		Name:         "Docker",
		CandidateIDs: []string{"docker.io", "docker-ce"},
	})
	if err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	if res.Status != StatusInstalled {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(mgr.installs) != 2 || mgr.installs[1] != "docker-ce" {
		t.Fatalf("unexpected install attempts: %v", mgr.installs)
	}
	if !out.RebootNeeded {
		t.Fatalf("reboot flag lost on the way out")
	}
}

func TestEnsureInstalled_AllCandidatesFail(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{installErr: map[string]error{
		"docker.io": errors.New("boom"),
		"docker-ce": errors.New("boom"),
	}}
	r := quietResolver(mgr, nil)
	_, _, err := r.EnsureInstalled(context.Background(), ToolSpec{
		Name:         "Docker",
		CandidateIDs: []string{"docker.io", "docker-ce"},
	})
	if !errors.Is(err, ErrInstallFailed) {
		t.Fatalf("expected ErrInstallFailed, got %v", err)
	}
}

func TestApplyAll_IsolatesFailuresAndAggregatesReboot(t *testing.T) {
	defer tu.WithEnv(t, "PATH", t.TempDir())()

	mgr := &fakeManager{
		queryOut:   map[string]string{},
		installErr: map[string]error{"broken-tool": errors.New("mirror down")},
		reboot:     true,
	}
	r := quietResolver(mgr, nil)
	rep := r.ApplyAll(context.Background(), []ToolSpec{
		{Name: "Broken", CandidateIDs: []string{"broken-tool"}},
		{Name: "Git", CandidateIDs: []string{"git"}},
	}, nil)

	if len(rep.Results) != 2 {
		t.Fatalf("one failure aborted the batch: %+v", rep.Results)
	}
	if len(rep.Failed) != 1 || rep.Failed[0] != "Broken" {
		t.Fatalf("unexpected failure set: %v", rep.Failed)
	}
	if rep.OK() {
		t.Fatalf("report claims OK despite an install failure")
	}
	if !rep.RebootNeeded {
		t.Fatalf("reboot flag from the successful install was not aggregated")
	}
	if rep.Results[1].Status != StatusInstalled {
		t.Fatalf("second tool did not install: %+v", rep.Results[1])
	}
}

func TestResolveModule_ThreeOutcomes(t *testing.T) {
	spec := ModuleSpec{Name: "Az", PathFragment: "/usr/local/share/powershell/Modules"}

	// (a) absent
	r := quietResolver(&fakeManager{}, &fakeGallery{})
	if res := r.ResolveModule(context.Background(), spec); res.Status != StatusNotInstalled {
		t.Fatalf("absent module: %+v", res)
	}

	// (b) present only under a user-scope path
	r = quietResolver(&fakeManager{}, &fakeGallery{installs: []psgallery.ModuleInstall{
		{Version: "11.0.0", Path: "/home/dev/.local/share/powershell/Modules/Az/11.0.0/Az.psd1"},
	}})
	if res := r.ResolveModule(context.Background(), spec); res.Status != StatusWrongScope {
		t.Fatalf("user-scope module: %+v", res)
	}

	// (c) present machine-wide
	r = quietResolver(&fakeManager{}, &fakeGallery{installs: []psgallery.ModuleInstall{
		{Version: "11.4.0", Path: "/usr/local/share/powershell/Modules/Az/11.4.0/Az.psd1"},
	}})
	res := r.ResolveModule(context.Background(), spec)
	if res.Status != StatusInstalled || res.Detail != "11.4.0" {
		t.Fatalf("machine-wide module: %+v", res)
	}
}

func TestResolveModule_ReportsNewestCopy(t *testing.T) {
	gal := &fakeGallery{installs: []psgallery.ModuleInstall{
		{Version: "9.3.0", Path: "/usr/local/share/powershell/Modules/Az/9.3.0/Az.psd1"},
		{Version: "11.4.0", Path: "/usr/local/share/powershell/Modules/Az/11.4.0/Az.psd1"},
		{Version: "10.0.1", Path: "/usr/local/share/powershell/Modules/Az/10.0.1/Az.psd1"},
	}}
	r := quietResolver(&fakeManager{}, gal)
	res := r.ResolveModule(context.Background(), ModuleSpec{
		Name:         "Az",
		PathFragment: "/usr/local/share/powershell/Modules",
	})
	if res.Status != StatusInstalled || res.Version != "11.4.0" {
		t.Fatalf("expected the newest machine-wide copy, got %+v", res)
	}
}

func TestResolveModule_NoGallery(t *testing.T) {
	r := quietResolver(&fakeManager{}, nil)
	res := r.ResolveModule(context.Background(), ModuleSpec{Name: "Az"})
	if res.Status != StatusCheckNeeded {
		t.Fatalf("expected check-needed without a gallery, got %+v", res)
	}
}

func TestEnsureModule_InstallsAndConfirms(t *testing.T) {
	gal := &fakeGallery{}
	r := quietResolver(&fakeManager{}, gal)
	res, err := r.EnsureModule(context.Background(), ModuleSpec{
		Name:         "PnP.PowerShell",
		PathFragment: "/usr/local/share/powershell/Modules",
	})
	if err != nil {
		t.Fatalf("ensure module: %v", err)
	}
	if res.Status != StatusInstalled || gal.installed != 1 {
		t.Fatalf("unexpected outcome: %+v installs=%d", res, gal.installed)
	}

	// Second pass must not install again.
	if _, err := r.EnsureModule(context.Background(), ModuleSpec{
		Name:         "PnP.PowerShell",
		PathFragment: "/usr/local/share/powershell/Modules",
	}); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if gal.installed != 1 {
		t.Fatalf("ensure-module is not idempotent: %d installs", gal.installed)
	}
}

func TestEnsureModule_WrongScopeLeftAlone(t *testing.T) {
	gal := &fakeGallery{installs: []psgallery.ModuleInstall{
		{Version: "2.0.0", Path: "/home/dev/.local/share/powershell/Modules/Graph.psd1"},
	}}
	r := quietResolver(&fakeManager{}, gal)
	res, err := r.EnsureModule(context.Background(), ModuleSpec{
		Name:         "Microsoft.Graph",
		PathFragment: "/usr/local/share/powershell/Modules",
	})
	if err != nil {
		t.Fatalf("ensure module: %v", err)
	}
	if res.Status != StatusWrongScope || gal.installed != 0 {
		t.Fatalf("wrong-scope module was reinstalled: %+v installs=%d", res, gal.installed)
	}
}
