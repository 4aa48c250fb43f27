package export

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

type pyproject struct {
	Project project `toml:"project"`
}

type project struct {
	Name           string   `toml:"name"`
	Dynamic        []string `toml:"dynamic"`
	RequiresPython string   `toml:"requires-python,omitempty"`
	Dependencies   []string `toml:"dependencies"`
}

// Pyproject renders a minimal pyproject.toml for a project called name.
func Pyproject(name string, meta Metadata) (string, error) {
	deps := meta.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return encodeTOML(pyproject{Project: project{
		Name:           name,
		Dynamic:        []string{"version"},
		RequiresPython: meta.RequiresPython,
		Dependencies:   deps,
	}})
}

// MergePyproject sets requires-python and dependencies in the [project] table
// of an existing pyproject.toml. Other keys are kept; comments and key order
// are not.
func MergePyproject(existing []byte, name string, meta Metadata) (string, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(existing, &doc); err != nil {
		return "", fmt.Errorf("failed to parse pyproject: %w", err)
	}

	proj := map[string]any{}
	if raw, ok := doc["project"]; ok {
		table, ok := raw.(map[string]any)
		if !ok {
			return "", fmt.Errorf("failed to parse pyproject: [project] is not a table")
		}
		proj = table
	}

	if _, ok := proj["name"]; !ok {
		proj["name"] = name
	}
	_, hasVersion := proj["version"]
	_, hasDynamic := proj["dynamic"]
	if !hasVersion && !hasDynamic {
		proj["dynamic"] = []string{"version"}
	}
	if meta.RequiresPython != "" {
		proj["requires-python"] = meta.RequiresPython
	}
	deps := meta.Dependencies
	if deps == nil {
		deps = []string{}
	}
	proj["dependencies"] = deps
	doc["project"] = proj

	return encodeTOML(doc)
}
