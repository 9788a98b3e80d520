package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prog.Width = minInt(msg.Width-10, 40)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.results)-1 {
				m.selected++
			}
		case "r":
			if m.phase == phaseReady {
				return m.startChecking()
			}
		case "u":
			if m.phase == phaseReady {
				m.phase = phaseApplying
				return m, tea.Batch(m.spin.Tick, m.applyCmd())
			}
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i := range m.results {
			if zone.Get(rowZoneID(i)).InBounds(msg) {
				m.selected = i
				break
			}
		}
		return m, nil

	case envReadyMsg:
		if msg.err != nil {
			// EnvironmentFailure: nothing can be resolved on this host.
			m.fatal = msg.err
			m.phase = phaseReady
			return m, nil
		}
		m.resolver = msg.resolver
		m.tools = msg.tools
		m.modules = msg.modules
		m.manager = msg.manager
		return m.startChecking()

	case itemResolvedMsg:
		m.results = append(m.results, msg.res)
		m.done++
		if m.done < m.total {
			return m, m.resolveCmd(m.done)
		}
		m.phase = phaseReady
		m.updatedAt = time.Now()
		return m, nil

	case appliedMsg:
		m.results = msg.rep.Results
		m.failed = msg.rep.Failed
		m.rebootNeeded = msg.rep.RebootNeeded
		m.done = len(msg.rep.Results)
		m.phase = phaseReady
		m.updatedAt = time.Now()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m model) startChecking() (tea.Model, tea.Cmd) {
	m.phase = phaseChecking
	m.results = nil
	m.failed = nil
	m.done = 0
	m.selected = 0
	m.total = len(m.tools) + len(m.modules)
	if m.total == 0 {
		m.phase = phaseReady
		return m, nil
	}
	return m, tea.Batch(m.spin.Tick, m.resolveCmd(0))
}

func rowZoneID(i int) string {
	return fmt.Sprintf("row.%d", i)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
