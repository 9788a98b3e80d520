package report

import (
	"strings"
	"testing"

	"envctl/internal/provision"
)

func sampleReport() provision.Report {
	return provision.Report{
		Results: []provision.Resolution{
			{Tool: "Git", Status: provision.StatusInstalled, Source: provision.SourceLocalCommand, Detail: "git version 2.40.0"},
			{Tool: "Az", Status: provision.StatusWrongScope, Source: provision.SourceManagerQuery, Detail: "found at /home/dev/..."},
			{Tool: "Docker", Status: provision.StatusNotInstalled, Source: provision.SourceNone},
		},
		Failed:       []string{"Docker"},
		RebootNeeded: true,
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		status provision.Status
		want   Level
	}{
		{provision.StatusInstalled, LevelOK},
		{provision.StatusWrongScope, LevelWarn},
		{provision.StatusCheckNeeded, LevelWarn},
		{provision.StatusNotInstalled, LevelFail},
	}
	for _, c := range cases {
		if got := LevelFor(provision.Resolution{Status: c.status}); got != c.want {
			t.Fatalf("LevelFor(%s) = %s, want %s", c.status, got, c.want)
		}
	}
}

func TestTable_ContainsAllItems(t *testing.T) {
	out := Table(sampleReport().Results)
	for _, want := range []string{"Git", "Az", "Docker", "git version 2.40.0", "current user only", "not installed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_CountsAndRebootNote(t *testing.T) {
	out := Summary(sampleReport())
	if !strings.Contains(out, "1 ok · 1 warn · 1 fail") {
		t.Fatalf("unexpected summary: %q", out)
	}
	if !strings.Contains(out, "restart required") {
		t.Fatalf("reboot note missing: %q", out)
	}
}

func TestMarkdown_Structure(t *testing.T) {
	md := Markdown(sampleReport(), "0.0.1")
	for _, want := range []string{
		"# Environment provisioning report",
		"| Git | OK |",
		"| Docker | FAIL |",
		"## Failures",
		"- Docker",
		"restart is required",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
