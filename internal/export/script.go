package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
)

// Shebang lets a script with inline metadata run directly through uv.
const Shebang = "#!/usr/bin/env -S uv run"

// Metadata is the body of an inline script metadata block.
type Metadata struct {
	RequiresPython string   `toml:"requires-python,omitempty"`
	Dependencies   []string `toml:"dependencies,omitempty"`
}

// releasePart matches the numeric release of a Python version ("3.13.0" in "3.13.0rc1").
var releasePart = regexp.MustCompile(`^\d+(?:\.\d+)*`)

// RequiresPython returns the requires-python specifier for an interpreter
// version: an exact pin, or a lower bound on the major.minor release.
func RequiresPython(version string, lowerBound bool) string {
	if version == "" {
		return ""
	}
	if !lowerBound {
		return "==" + version
	}
	v, err := semver.NewVersion(releasePart.FindString(version))
	if err != nil {
		return ">=" + version
	}
	return fmt.Sprintf(">=%d.%d", v.Major(), v.Minor())
}

func encodeTOML(v any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetArraysMultiline(true)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode toml: %w", err)
	}
	return buf.String(), nil
}

// ScriptBlock renders meta as a shebang line plus a `# /// script` block,
// newline terminated.
func ScriptBlock(meta Metadata) (string, error) {
	body, err := encodeTOML(meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(Shebang + "\n")
	b.WriteString("# /// script\n")
	body = strings.TrimRight(body, "\n")
	for _, line := range strings.Split(body, "\n") {
		if body == "" {
			break
		}
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# " + line + "\n")
	}
	b.WriteString("# ///\n")
	return b.String(), nil
}

var (
	shebangLine = regexp.MustCompile(`\A#![^\n]*\n`)
	scriptBlock = regexp.MustCompile(`\A# /// script\n(?:#(?: [^\n]*)?\n)*?# ///(?:\n|\z)`)
)

// PrependScript puts a metadata block for meta at the top of script. A leading
// shebang and an existing leading script block are replaced.
func PrependScript(script string, meta Metadata) (string, error) {
	block, err := ScriptBlock(meta)
	if err != nil {
		return "", err
	}

	rest := strings.ReplaceAll(script, "\r\n", "\n")
	rest = shebangLine.ReplaceAllString(rest, "")
	rest = scriptBlock.ReplaceAllString(rest, "")
	rest = strings.TrimLeft(rest, "\n")
	if rest == "" {
		return block, nil
	}
	return block + "\n" + rest, nil
}
