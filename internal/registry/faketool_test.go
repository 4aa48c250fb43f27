package registry_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Quidge/uvn/internal/uv"
)

type pkg struct {
	version  string
	topLevel bool
}

// fakeTool stands in for uv. Environments get a bin/python symlink into a
// fake managed-python directory, and package sets are kept in memory.
type fakeTool struct {
	pythonHome string
	packages   map[string]map[string]pkg // env path -> package name -> pkg

	venvCalls    []uv.VenvOptions
	installCalls int
	lockQuiet    []bool

	venvErr    error
	installErr error
	broken     map[string]bool // env paths whose interpreter fails
}

func requireSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake environments use symlinks")
	}
}

func newFakeTool(t *testing.T) *fakeTool {
	t.Helper()
	requireSymlinks(t)
	return &fakeTool{
		pythonHome: t.TempDir(),
		packages:   map[string]map[string]pkg{},
		broken:     map[string]bool{},
	}
}

var minorOnly = regexp.MustCompile(`^\d+\.\d+$`)

// build maps an interpreter request to a managed build name.
func build(request string) string {
	switch {
	case request == "":
		return "cpython-3.12.4-linux-x86_64-gnu"
	case strings.HasPrefix(request, "cpython-"):
		return request
	case minorOnly.MatchString(request):
		return "cpython-" + request + ".4-linux-x86_64-gnu"
	default:
		return "cpython-" + request + "-linux-x86_64-gnu"
	}
}

func envOf(python string) string {
	return filepath.Dir(filepath.Dir(python))
}

func (f *fakeTool) Venv(_ context.Context, path string, opts uv.VenvOptions) error {
	f.venvCalls = append(f.venvCalls, opts)
	if f.venvErr != nil {
		return f.venvErr
	}

	b := build(opts.Python)
	minor := strings.Join(strings.SplitN(strings.SplitN(b, "-", 3)[1], ".", 3)[:2], ".")
	interp := filepath.Join(f.pythonHome, b, "bin", "python"+minor)
	if err := os.MkdirAll(filepath.Dir(interp), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(interp, []byte("#!/bin/sh\n"), 0755); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(path, "bin"), 0755); err != nil {
		return err
	}
	if err := os.Symlink(interp, filepath.Join(path, "bin", "python")); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, "bin", "activate"), []byte("# activate\n"), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, "pyvenv.cfg"), []byte("version_info = "+b+"\n"), 0644); err != nil {
		return err
	}
	f.packages[path] = map[string]pkg{}
	return nil
}

// add installs a package into the environment at path.
func (f *fakeTool) add(path, name, version string, topLevel bool) {
	if f.packages[path] == nil {
		f.packages[path] = map[string]pkg{}
	}
	f.packages[path][name] = pkg{version: version, topLevel: topLevel}
}

func (f *fakeTool) sortedNames(env string) []string {
	names := make([]string, 0, len(f.packages[env]))
	for name := range f.packages[env] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (f *fakeTool) Freeze(_ context.Context, python string) (string, error) {
	env := envOf(python)
	var b strings.Builder
	for _, name := range f.sortedNames(env) {
		fmt.Fprintf(&b, "%s==%s\n", name, f.packages[env][name].version)
	}
	return b.String(), nil
}

func (f *fakeTool) Tree(_ context.Context, python string) (string, error) {
	env := envOf(python)
	var b strings.Builder
	for _, name := range f.sortedNames(env) {
		if p := f.packages[env][name]; p.topLevel {
			fmt.Fprintf(&b, "%s v%s\n", name, p.version)
		}
	}
	return b.String(), nil
}

func (f *fakeTool) Install(_ context.Context, python, requirementsFile string, _ uv.InstallOptions) error {
	f.installCalls++
	if f.installErr != nil {
		return f.installErr
	}
	data, err := os.ReadFile(requirementsFile)
	if err != nil {
		return err
	}
	env := envOf(python)
	for _, line := range strings.Split(string(data), "\n") {
		name, version, ok := strings.Cut(strings.TrimSpace(line), "==")
		if ok {
			f.add(env, name, version, true)
		}
	}
	return nil
}

func (f *fakeTool) Lock(_ context.Context, dir string, quiet bool) error {
	f.lockQuiet = append(f.lockQuiet, quiet)
	pyproject, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "uv.lock"), append([]byte("version = 1\n# from:\n"), pyproject...), 0644)
}

func (f *fakeTool) PythonVersion(_ context.Context, python string) (string, error) {
	if f.broken[envOf(python)] {
		return "", &uv.ExitError{Args: []string{python, "-c", "..."}, ExitCode: 1, Stderr: "ImportError"}
	}
	return "3.12.4", nil
}

// packageSet returns the frozen package lines of the environment at path.
func (f *fakeTool) packageSet(t *testing.T, path string) []string {
	t.Helper()
	out, err := f.Freeze(t.Context(), filepath.Join(path, "bin", "python"))
	require.NoError(t, err)
	return strings.Fields(out)
}
