package cli

import (
	"runtime"

	"envctl/internal/manifest"
	"envctl/internal/pkgmgr"
	"envctl/internal/provision"
	"envctl/internal/psgallery"
	"envctl/internal/system"
)

// hostEnv bundles everything a command needs to resolve the catalog.
type hostEnv struct {
	resolver *provision.Resolver
	tools    []provision.ToolSpec
	modules  []provision.ModuleSpec
}

// newHostEnv detects the host package manager (absence is fatal for the
// whole run) and builds the effective catalog, built-ins overlaid with the
// user manifest.
func newHostEnv() (*hostEnv, error) {
	mgr, err := pkgmgr.Detect()
	if err != nil {
		return nil, err
	}
	tools, modules, err := manifest.Effective(mgr.Name(), runtime.GOOS)
	if err != nil {
		// A broken overlay never blocks provisioning with the built-ins.
		system.Logger.Warn("user manifest ignored", "err", err)
	}
	return &hostEnv{
		resolver: provision.NewResolver(mgr, psgallery.Detect()),
		tools:    tools,
		modules:  modules,
	}, nil
}
