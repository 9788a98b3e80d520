package ui

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"envctl/internal/manifest"
	"envctl/internal/pkgmgr"
	"envctl/internal/provision"
	"envctl/internal/psgallery"
)

type phase int

const (
	phaseDetect phase = iota
	phaseChecking
	phaseReady
	phaseApplying
)

// Model for the dashboard TUI.
type model struct {
	width  int
	height int

	spin spinner.Model
	prog progress.Model

	resolver *provision.Resolver
	tools    []provision.ToolSpec
	modules  []provision.ModuleSpec
	manager  string

	phase    phase
	results  []provision.Resolution
	done     int
	total    int
	selected int

	failed       []string
	rebootNeeded bool
	fatal        error

	quitting  bool
	updatedAt time.Time
}

// InitialModel builds the dashboard in its pre-detection state.
func InitialModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	p := progress.New(progress.WithDefaultGradient())
	return model{spin: s, prog: p, phase: phaseDetect}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, detectCmd())
}

// messages

type envReadyMsg struct {
	resolver *provision.Resolver
	tools    []provision.ToolSpec
	modules  []provision.ModuleSpec
	manager  string
	err      error
}

type itemResolvedMsg struct {
	index int
	res   provision.Resolution
}

type appliedMsg struct {
	rep provision.Report
}

// detectCmd finds the host package manager and assembles the catalog.
func detectCmd() tea.Cmd {
	return func() tea.Msg {
		mgr, err := pkgmgr.Detect()
		if err != nil {
			return envReadyMsg{err: err}
		}
		tools, modules, _ := manifest.Effective(mgr.Name(), runtime.GOOS)
		return envReadyMsg{
			resolver: provision.NewResolver(mgr, psgallery.Detect()),
			tools:    tools,
			modules:  modules,
			manager:  mgr.Name(),
		}
	}
}

// resolveCmd resolves the i-th catalog item. Items are resolved strictly one
// at a time; Update schedules the next index when this message lands.
func (m model) resolveCmd(i int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if i < len(m.tools) {
			return itemResolvedMsg{index: i, res: m.resolver.Resolve(ctx, m.tools[i])}
		}
		mod := m.modules[i-len(m.tools)]
		return itemResolvedMsg{index: i, res: m.resolver.ResolveModule(ctx, mod)}
	}
}

// applyCmd runs a full ensure-install pass.
func (m model) applyCmd() tea.Cmd {
	return func() tea.Msg {
		return appliedMsg{rep: m.resolver.ApplyAll(context.Background(), m.tools, m.modules)}
	}
}
