package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"envctl/internal/provision"
)

// Level is the reporting bucket for one resolution.
type Level string

const (
	LevelOK   Level = "OK"
	LevelWarn Level = "WARN"
	LevelFail Level = "FAIL"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// LevelFor maps a resolution to its reporting level. WrongScope and
// CheckNeeded are degraded-but-not-failed states; NotInstalled is reported
// as FAIL even on a verify-only pass, where it stays informational.
func LevelFor(res provision.Resolution) Level {
	switch res.Status {
	case provision.StatusInstalled:
		return LevelOK
	case provision.StatusWrongScope, provision.StatusCheckNeeded:
		return LevelWarn
	default:
		return LevelFail
	}
}

// Badge renders a colored fixed-width level tag.
func Badge(l Level) string {
	padded := fmt.Sprintf("%-4s", string(l))
	switch l {
	case LevelOK:
		return okStyle.Render(padded)
	case LevelWarn:
		return warnStyle.Render(padded)
	default:
		return failStyle.Render(padded)
	}
}

// Detail builds the human line for one resolution.
func Detail(res provision.Resolution) string {
	switch res.Status {
	case provision.StatusInstalled:
		d := res.Detail
		if d == "" {
			d = "installed"
		}
		return fmt.Sprintf("%s · via %s", d, res.Source)
	case provision.StatusWrongScope:
		return "installed for the current user only: " + res.Detail
	case provision.StatusCheckNeeded:
		return "needs a manual check: " + res.Detail
	default:
		if res.Detail != "" {
			return "not installed: " + res.Detail
		}
		return "not installed"
	}
}

// Table renders the per-item status table with aligned columns.
func Table(results []provision.Resolution) string {
	nameW := runewidth.StringWidth("ITEM")
	for _, res := range results {
		if w := runewidth.StringWidth(res.Tool); w > nameW {
			nameW = w
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s  %s\n",
		dimStyle.Render(pad("ITEM", nameW)), dimStyle.Render("STAT"), dimStyle.Render("DETAIL"))
	for _, res := range results {
		fmt.Fprintf(&b, "  %s  %s  %s\n", pad(res.Tool, nameW), Badge(LevelFor(res)), Detail(res))
	}
	return b.String()
}

// Summary renders the one-line roll-up under the table.
func Summary(rep provision.Report) string {
	var ok, warn, fail int
	for _, res := range rep.Results {
		switch LevelFor(res) {
		case LevelOK:
			ok++
		case LevelWarn:
			warn++
		default:
			fail++
		}
	}
	line := fmt.Sprintf("  %d ok · %d warn · %d fail", ok, warn, fail)
	if rep.RebootNeeded {
		line += warnStyle.Render("  — restart required to finish provisioning")
	}
	return line
}

// Markdown renders the full provisioning report as a markdown document.
func Markdown(rep provision.Report, appVersion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Environment provisioning report\n\n")
	fmt.Fprintf(&b, "Generated by envctl v%s on %s.\n\n", appVersion, time.Now().Format("2006-01-02 15:04"))
	b.WriteString("| Item | Status | Detail |\n|---|---|---|\n")
	for _, res := range rep.Results {
		detail := strings.ReplaceAll(Detail(res), "|", "\\|")
		fmt.Fprintf(&b, "| %s | %s | %s |\n", res.Tool, LevelFor(res), detail)
	}
	b.WriteString("\n")
	if len(rep.Failed) > 0 {
		fmt.Fprintf(&b, "## Failures\n\n")
		for _, name := range rep.Failed {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	if rep.RebootNeeded {
		b.WriteString("> A restart is required to finish provisioning.\n")
	}
	return b.String()
}

// Render pretty-prints a markdown report for the terminal.
func Render(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func pad(s string, w int) string {
	gap := w - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
