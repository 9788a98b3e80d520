package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"envctl/internal/report"
	appver "envctl/internal/version"
)

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "\n  %s %s\n", titleStyle.Render("envctl"), subtitleStyle.Render("v"+appver.AppVersion))
	if m.manager != "" {
		fmt.Fprintf(b, "  %s\n", subtitleStyle.Render("package manager: "+m.manager))
	}
	b.WriteString("\n")

	if m.fatal != nil {
		fmt.Fprintf(b, "  %s %v\n\n", failStyle.Render("environment failure:"), m.fatal)
		fmt.Fprintf(b, "%s\n", helpStyle.Render("  q quit"))
		return zone.Scan(b.String())
	}

	switch m.phase {
	case phaseDetect:
		fmt.Fprintf(b, "  %s detecting package manager…\n", m.spin.View())
	case phaseChecking:
		current := ""
		if m.done < m.total {
			current = m.itemName(m.done)
		}
		pct := 0.0
		if m.total > 0 {
			pct = float64(m.done) / float64(m.total)
		}
		fmt.Fprintf(b, "  %s checking %s %s %d/%d\n",
			m.spin.View(),
			lipgloss.NewStyle().Foreground(colPrimary).Render(current),
			m.prog.ViewAs(pct), m.done, m.total)
	case phaseApplying:
		fmt.Fprintf(b, "  %s installing missing items…\n", m.spin.View())
	}
	b.WriteString("\n")

	for i, res := range m.results {
		line := fmt.Sprintf("%s  %s  %s", report.Badge(report.LevelFor(res)), res.Tool, subtitleStyle.Render(report.Detail(res)))
		if i == m.selected && m.phase == phaseReady {
			line = selectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		// Each row is a mouse zone; click selects.
		b.WriteString("  " + zone.Mark(rowZoneID(i), rowStyle.Render(line)) + "\n")
	}

	if m.phase == phaseReady {
		b.WriteString("\n")
		if len(m.failed) > 0 {
			fmt.Fprintf(b, "  %s %s\n", failStyle.Render("failed:"), strings.Join(m.failed, ", "))
		}
		if m.rebootNeeded {
			fmt.Fprintf(b, "  %s\n", warnStyle.Render("a restart is required to finish provisioning"))
		}
		b.WriteString(helpStyle.Render("  r re-check · u install missing · ↑/↓ select · q quit"))
		b.WriteString("\n")
	}
	return zone.Scan(b.String())
}

func (m model) itemName(i int) string {
	if i < len(m.tools) {
		return m.tools[i].Name
	}
	if j := i - len(m.tools); j < len(m.modules) {
		return m.modules[j].Name
	}
	return ""
}
