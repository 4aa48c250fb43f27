package registry

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
)

// Status describes whether an environment's interpreter is usable.
type Status string

const (
	StatusOK        Status = "ok"
	StatusCorrupted Status = "corrupted"
)

// Environment is a virtual environment directory under a registry root.
type Environment struct {
	Name   string // Directory name
	Path   string // Absolute path to the environment
	Status Status

	// Python is the interpreter path; empty when it is missing.
	Python string

	// FullVersion identifies the managed interpreter build, for example
	// "cpython-3.12.4-linux-x86_64-gnu". Empty when the interpreter isn't a
	// link into a managed installation.
	FullVersion string

	// Version is the interpreter version ("3.12.4").
	Version string

	// SizeBytes is only set when sizes were requested.
	SizeBytes int64
}

// ReadableSize returns SizeBytes in SI units ("24 MB").
func (e *Environment) ReadableSize() string {
	return humanize.Bytes(uint64(max(e.SizeBytes, 0)))
}

// interpreterGlob matches the interpreter on both POSIX and Windows layouts.
const interpreterGlob = "{bin,Scripts}/python{,.exe}"

// findInterpreter returns the interpreter path inside dir, or "" when there is none.
func findInterpreter(dir string) string {
	matches, err := doublestar.Glob(os.DirFS(dir), interpreterGlob)
	if err != nil || len(matches) == 0 {
		return ""
	}
	return filepath.Join(dir, filepath.FromSlash(matches[0]))
}

var fullVersionPattern = regexp.MustCompile(`^[a-z]+-\d+\.\d+`)

// fullVersion reads the managed interpreter build from the interpreter link,
// which points at <python-dir>/<build>/bin/pythonX.Y.
func fullVersion(python string) string {
	target, err := os.Readlink(python)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(target), "/")
	if len(parts) < 3 {
		return ""
	}
	build := parts[len(parts)-3]
	if !fullVersionPattern.MatchString(build) {
		return ""
	}
	return build
}

// versionSegment extracts "3.12.4" from "cpython-3.12.4-linux-x86_64-gnu".
func versionSegment(full string) string {
	parts := strings.SplitN(full, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// inspect builds the Environment for the directory called name. Interpreter
// problems are reported through Status, not as errors.
func (r *Registry) inspect(ctx context.Context, name string) *Environment {
	env := &Environment{
		Name:   name,
		Path:   r.path(name),
		Status: StatusCorrupted,
	}

	python := findInterpreter(env.Path)
	if python == "" {
		r.logger.Debug("no interpreter found", "env", name)
		return env
	}
	if _, err := os.Stat(python); err != nil {
		r.logger.Debug("interpreter is not usable", "env", name, "python", python, "error", err)
		return env
	}
	env.Python = python
	env.FullVersion = fullVersion(python)

	version, err := r.tool.PythonVersion(ctx, python)
	if err != nil {
		r.logger.Debug("interpreter failed to run", "env", name, "error", err)
		return env
	}

	env.Status = StatusOK
	env.Version = versionSegment(env.FullVersion)
	if env.Version == "" {
		env.Version = version
	}
	return env
}
