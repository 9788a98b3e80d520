package provision

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultTools returns the built-in tool catalog with candidate package ids
// for the given manager family ("apt", "snap" or "winget"). Candidate order
// is preference order.
func DefaultTools(family string) []ToolSpec {
	if family == "winget" {
		return wingetTools()
	}
	return debianTools()
}

func wingetTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:            "Git",
			CandidateIDs:    []string{"Git.Git"},
			LocalCommand:    "git",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "Git",
		},
		{
			Name:            "Python",
			CandidateIDs:    []string{"Python.Python.3.12", "Python.Python.3.11"},
			LocalCommand:    "python",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "Python",
			Aliases:         []string{"python3"},
		},
		{
			Name:            "GitHub CLI",
			CandidateIDs:    []string{"GitHub.cli"},
			LocalCommand:    "gh",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "GitHub CLI",
			Aliases:         []string{"gh"},
		},
		{
			Name:            "VS Code",
			CandidateIDs:    []string{"Microsoft.VisualStudioCode"},
			LocalCommand:    "code",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "Microsoft Visual Studio Code",
			MachineWide:     true,
			Aliases:         []string{"code", "vscode"},
		},
		{
			Name:            "Azure CLI",
			CandidateIDs:    []string{"Microsoft.AzureCLI"},
			LocalCommand:    "az",
			VersionArgs:     []string{"version"},
			ManifestPattern: "Microsoft Azure CLI",
			MachineWide:     true,
			Aliases:         []string{"az"},
		},
		{
			Name:            "Bicep",
			CandidateIDs:    []string{"Microsoft.Bicep"},
			LocalCommand:    "bicep",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "Bicep CLI",
		},
		{
			Name:            "PowerShell 7",
			CandidateIDs:    []string{"Microsoft.PowerShell"},
			LocalCommand:    "pwsh",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "PowerShell 7",
			MachineWide:     true,
			Aliases:         []string{"pwsh", "powershell"},
		},
		{
			Name:            "Docker",
			CandidateIDs:    []string{"Docker.DockerDesktop"},
			LocalCommand:    "docker",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "Docker Desktop",
			MachineWide:     true,
		},
	}
}

func debianTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:            "Git",
			CandidateIDs:    []string{"git"},
			LocalCommand:    "git",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "git",
		},
		{
			Name:            "Python",
			CandidateIDs:    []string{"python3"},
			LocalCommand:    "python3",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "python3",
			Aliases:         []string{"python3"},
		},
		{
			Name:            "GitHub CLI",
			CandidateIDs:    []string{"gh"},
			LocalCommand:    "gh",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "gh",
			Aliases:         []string{"gh"},
		},
		{
			Name:            "VS Code",
			CandidateIDs:    []string{"code"},
			LocalCommand:    "code",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "code",
			Aliases:         []string{"code", "vscode"},
		},
		{
			Name:            "Azure CLI",
			CandidateIDs:    []string{"azure-cli"},
			LocalCommand:    "az",
			VersionArgs:     []string{"version"},
			ManifestPattern: "azure-cli",
			Aliases:         []string{"az"},
		},
		{
			// No stable apt package; detected via its own binary only.
			Name:         "Bicep",
			LocalCommand: "bicep",
			VersionArgs:  []string{"--version"},
		},
		{
			Name:            "PowerShell 7",
			CandidateIDs:    []string{"powershell"},
			LocalCommand:    "pwsh",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "powershell",
			Aliases:         []string{"pwsh", "powershell"},
		},
		{
			Name:            "Docker",
			CandidateIDs:    []string{"docker.io", "docker-ce"},
			LocalCommand:    "docker",
			VersionArgs:     []string{"--version"},
			ManifestPattern: "docker",
		},
	}
}

// DefaultModules returns the built-in PowerShell module catalog. The path
// fragment marks the machine-wide module root on the given OS.
func DefaultModules(goos string) []ModuleSpec {
	frag := "/usr/local/share/powershell/Modules"
	if goos == "windows" {
		frag = `\Program Files\PowerShell\Modules`
	}
	return []ModuleSpec{
		{Name: "Az", PathFragment: frag},
		{Name: "Microsoft.Graph", PathFragment: frag},
		{Name: "PnP.PowerShell", PathFragment: frag},
	}
}

// SelectTools filters the catalog by user-supplied names. Exact names and
// aliases win; anything else falls back to fuzzy matching so "vscode" or
// "pythn" still resolve. Names that match nothing are returned as unknown.
func SelectTools(catalog []ToolSpec, args []string) (selected []ToolSpec, unknown []string) {
	if len(args) == 0 {
		return catalog, nil
	}
	picked := make(map[string]bool)
	for _, arg := range args {
		a := strings.ToLower(strings.TrimSpace(arg))
		if a == "" {
			continue
		}
		if a == "all" {
			return catalog, nil
		}
		name := matchTool(catalog, a)
		if name == "" {
			unknown = append(unknown, arg)
			continue
		}
		picked[name] = true
	}
	for _, t := range catalog {
		if picked[t.Name] {
			selected = append(selected, t)
		}
	}
	return selected, unknown
}

// SelectModules filters the module catalog by user-supplied names,
// case-insensitively. Module names are exact identifiers on the gallery, so
// there is no fuzzy fallback. Names that match nothing are returned as
// unknown; callers selecting across both catalogs treat a name as unknown
// only when neither catalog claims it.
func SelectModules(catalog []ModuleSpec, args []string) (selected []ModuleSpec, unknown []string) {
	if len(args) == 0 {
		return catalog, nil
	}
	picked := make(map[string]bool)
	for _, arg := range args {
		a := strings.ToLower(strings.TrimSpace(arg))
		if a == "" {
			continue
		}
		if a == "all" {
			return catalog, nil
		}
		found := ""
		for _, m := range catalog {
			if strings.ToLower(m.Name) == a {
				found = m.Name
				break
			}
		}
		if found == "" {
			unknown = append(unknown, arg)
			continue
		}
		picked[found] = true
	}
	for _, m := range catalog {
		if picked[m.Name] {
			selected = append(selected, m)
		}
	}
	return selected, unknown
}

func matchTool(catalog []ToolSpec, arg string) string {
	names := make([]string, 0, len(catalog)*2)
	owner := make(map[string]string)
	for _, t := range catalog {
		for _, n := range append([]string{t.Name, t.LocalCommand}, t.Aliases...) {
			n = strings.ToLower(n)
			if n == "" {
				continue
			}
			if n == arg {
				return t.Name
			}
			if _, dup := owner[n]; !dup {
				owner[n] = t.Name
				names = append(names, n)
			}
		}
	}
	if m := fuzzy.Find(arg, names); len(m) > 0 {
		return owner[m[0].Str]
	}
	return ""
}
