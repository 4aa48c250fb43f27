// Package export renders an environment's installed packages as
// requirements text, inline script metadata or a pyproject.toml.
package export

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Requirement is one installed package.
type Requirement struct {
	Name    string
	Op      string // "==" or ">="; empty for direct references
	Version string

	// Raw holds lines that aren't plain pins (e.g. `pkg @ file:///...`) verbatim.
	Raw string

	// Editable marks `-e <location>` lines. Their Name is derived from the
	// location for sorting only and is never rewritten into Raw.
	Editable bool
}

// Options control how requirements are rendered.
type Options struct {
	// LowerBound renders ">=" instead of "==".
	LowerBound bool

	// Normalize rewrites names to their PEP 503 form.
	Normalize bool
}

var (
	separators = regexp.MustCompile(`[-_.]+`)
	lower      = cases.Lower(language.Und)
	fold       = cases.Fold()
)

// NormalizeName returns the PEP 503 normalized form of a package name.
func NormalizeName(name string) string {
	return separators.ReplaceAllString(lower.String(name), "-")
}

// ParseFreeze parses `uv pip freeze` output.
func ParseFreeze(out string) []Requirement {
	var reqs []Requirement
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if location, ok := editableLocation(line); ok {
			reqs = append(reqs, Requirement{Name: editableName(location), Raw: line, Editable: true})
			continue
		}
		if name, version, ok := strings.Cut(line, "=="); ok {
			reqs = append(reqs, Requirement{
				Name:    strings.TrimSpace(name),
				Op:      "==",
				Version: strings.TrimSpace(version),
			})
			continue
		}
		name, _, _ := strings.Cut(line, " @ ")
		reqs = append(reqs, Requirement{Name: strings.TrimSpace(name), Raw: line})
	}
	return reqs
}

func editableLocation(line string) (string, bool) {
	for _, prefix := range []string{"-e ", "--editable ", "--editable="} {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// editableName returns the project name of an editable location: the
// #egg= fragment when present, otherwise the last path segment.
func editableName(location string) string {
	if _, egg, ok := strings.Cut(location, "#egg="); ok {
		egg, _, _ = strings.Cut(egg, "&")
		return egg
	}
	location, _, _ = strings.Cut(location, "#")
	return path.Base(strings.TrimRight(strings.ReplaceAll(location, `\`, "/"), "/"))
}

// ParseTree parses `uv pip tree --depth 0` output, which lists one
// `name vX.Y.Z` line per top-level package.
func ParseTree(out string) []Requirement {
	var reqs []Requirement
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		name, version, ok := strings.Cut(line, " v")
		if !ok || name == "" || strings.ContainsAny(name, " ()") {
			continue
		}
		version, _, _ = strings.Cut(version, " ")
		reqs = append(reqs, Requirement{Name: name, Op: "==", Version: version})
	}
	return reqs
}

// Specifiers renders reqs as sorted requirement specifiers.
func Specifiers(reqs []Requirement, opts Options) []string {
	type entry struct {
		key  string
		spec string
	}

	entries := make([]entry, 0, len(reqs))
	for _, r := range reqs {
		name := r.Name
		if opts.Normalize {
			name = NormalizeName(name)
		}

		var spec string
		switch {
		case r.Editable:
			spec = r.Raw
		case r.Raw != "":
			spec = r.Raw
			if opts.Normalize {
				spec = name + strings.TrimPrefix(r.Raw, r.Name)
			}
		default:
			op := r.Op
			if opts.LowerBound && op == "==" {
				op = ">="
			}
			spec = name + op + r.Version
		}
		entries = append(entries, entry{key: fold.String(name), spec: spec})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.spec, b.spec)
	})

	specs := make([]string, len(entries))
	for i, e := range entries {
		specs[i] = e.spec
	}
	return specs
}

// Requirements renders reqs as requirements.txt text: one specifier per line,
// newline terminated. No packages render as the empty string.
func Requirements(reqs []Requirement, opts Options) string {
	specs := Specifiers(reqs, opts)
	if len(specs) == 0 {
		return ""
	}
	return strings.Join(specs, "\n") + "\n"
}
