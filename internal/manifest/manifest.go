package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"envctl/internal/provision"
)

// Manifest is the optional user catalog overlay. Entries are matched to the
// built-in catalog by name: a matching name replaces the built-in spec, a new
// name extends the catalog.
type Manifest struct {
	Tools   []provision.ToolSpec   `json:"tools,omitempty"`
	Modules []provision.ModuleSpec `json:"modules,omitempty"`
}

// Dir returns the envctl config directory under the user config base.
// On Linux this resolves to $XDG_CONFIG_HOME/envctl, on macOS to
// ~/Library/Application Support/envctl, on Windows to %AppData%/envctl.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "envctl"), nil
}

// Path returns the manifest file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "manifest.json"), nil
}

// Load reads the user manifest. A missing file is not an error: the
// built-in catalog alone applies.
func Load() (Manifest, error) {
	var m Manifest
	p, err := Path()
	if err != nil {
		return m, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, err
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, err
	}
	for _, t := range m.Tools {
		if err := t.Validate(); err != nil {
			return Manifest{}, err
		}
	}
	return m, nil
}

// Save writes the manifest, creating the config directory as needed.
func Save(m Manifest) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o644)
}

// Merge overlays the user manifest on the built-in catalog.
func Merge(tools []provision.ToolSpec, modules []provision.ModuleSpec, m Manifest) ([]provision.ToolSpec, []provision.ModuleSpec) {
	outTools := make([]provision.ToolSpec, len(tools))
	copy(outTools, tools)
	for _, ut := range m.Tools {
		replaced := false
		for i, t := range outTools {
			if strings.EqualFold(t.Name, ut.Name) {
				outTools[i] = ut
				replaced = true
				break
			}
		}
		if !replaced {
			outTools = append(outTools, ut)
		}
	}
	outMods := make([]provision.ModuleSpec, len(modules))
	copy(outMods, modules)
	for _, um := range m.Modules {
		replaced := false
		for i, md := range outMods {
			if strings.EqualFold(md.Name, um.Name) {
				outMods[i] = um
				replaced = true
				break
			}
		}
		if !replaced {
			outMods = append(outMods, um)
		}
	}
	return outTools, outMods
}

// Effective returns the catalog for this host: built-ins for the manager
// family and OS, overlaid with the user manifest when one exists.
func Effective(family, goos string) ([]provision.ToolSpec, []provision.ModuleSpec, error) {
	tools := provision.DefaultTools(family)
	modules := provision.DefaultModules(goos)
	m, err := Load()
	if err != nil {
		return tools, modules, err
	}
	tools, modules = Merge(tools, modules, m)
	return tools, modules, nil
}
