package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Quidge/uvn/internal/export"
)

// Format is an export output format.
type Format string

const (
	FormatRequirements Format = "txt"
	FormatScript       Format = "py"
	FormatPyproject    Format = "toml"
	FormatLock         Format = "lock"
)

// Formats lists every export format.
var Formats = []Format{FormatRequirements, FormatScript, FormatPyproject, FormatLock}

// ParseFormat reports whether s names an export format.
func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ExportOptions configures Export and ExportFile.
type ExportOptions struct {
	// Short lists only top-level packages.
	Short bool

	// LowerBound uses ">=" specifiers instead of exact pins.
	LowerBound bool

	// Normalize rewrites package names to their PEP 503 form.
	Normalize bool

	// Quiet suppresses tool output while locking.
	Quiet bool
}

func (o ExportOptions) topLevel() bool {
	return o.Short
}

func (o ExportOptions) render() export.Options {
	return export.Options{LowerBound: o.LowerBound, Normalize: o.Normalize}
}

// Export renders the packages of the environment matching query.
func (r *Registry) Export(ctx context.Context, query string, format Format, opts ExportOptions) (string, error) {
	env, err := r.exportable(ctx, query)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatRequirements:
		reqs, err := r.requirements(ctx, env, opts.topLevel())
		if err != nil {
			return "", err
		}
		return export.Requirements(reqs, opts.render()), nil
	case FormatScript:
		meta, err := r.metadata(ctx, env, format, opts)
		if err != nil {
			return "", err
		}
		return export.ScriptBlock(meta)
	case FormatPyproject:
		meta, err := r.metadata(ctx, env, format, opts)
		if err != nil {
			return "", err
		}
		return export.Pyproject(projectName(env.Name), meta)
	case FormatLock:
		return r.lock(ctx, env, opts.Quiet)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ExportFile writes the packages of the environment matching query to path,
// choosing the format from its extension. Scripts get a metadata block
// prepended and existing pyproject files are merged; other files are
// overwritten.
func (r *Registry) ExportFile(ctx context.Context, query, path string, opts ExportOptions) (Format, error) {
	format, ok := ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	var text string
	switch format {
	case FormatScript, FormatPyproject:
		existing, err := readOptional(path)
		if err != nil {
			return "", err
		}
		env, err := r.exportable(ctx, query)
		if err != nil {
			return "", err
		}
		meta, err := r.metadata(ctx, env, format, opts)
		if err != nil {
			return "", err
		}
		switch {
		case format == FormatScript:
			text, err = export.PrependScript(string(existing), meta)
		case existing != nil:
			text, err = export.MergePyproject(existing, projectName(env.Name), meta)
		default:
			text, err = export.Pyproject(projectName(env.Name), meta)
		}
		if err != nil {
			return "", err
		}
	default:
		var err error
		text, err = r.Export(ctx, query, format, opts)
		if err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", &FSError{Op: "write", Path: path, Err: err}
	}
	r.logger.Debug("exported environment", "query", query, "path", path, "format", format)
	return format, nil
}

func (r *Registry) exportable(ctx context.Context, query string) (*Environment, error) {
	env, err := r.Get(ctx, query)
	if err != nil {
		return nil, err
	}
	if env.Status != StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, env.Name)
	}
	return env, nil
}

func (r *Registry) requirements(ctx context.Context, env *Environment, topLevel bool) ([]export.Requirement, error) {
	if topLevel {
		out, err := r.tool.Tree(ctx, env.Python)
		if err != nil {
			return nil, toolError(err)
		}
		return export.ParseTree(out), nil
	}
	out, err := r.tool.Freeze(ctx, env.Python)
	if err != nil {
		return nil, toolError(err)
	}
	return export.ParseFreeze(out), nil
}

func (r *Registry) metadata(ctx context.Context, env *Environment, format Format, opts ExportOptions) (export.Metadata, error) {
	reqs, err := r.requirements(ctx, env, opts.topLevel())
	if err != nil {
		return export.Metadata{}, err
	}
	return export.Metadata{
		RequiresPython: export.RequiresPython(env.Version, opts.LowerBound),
		Dependencies:   export.Specifiers(reqs, opts.render()),
	}, nil
}

// lock resolves the full package set with the tool in a scratch project and
// returns the resulting lock file.
func (r *Registry) lock(ctx context.Context, env *Environment, quiet bool) (string, error) {
	meta, err := r.metadata(ctx, env, FormatLock, ExportOptions{})
	if err != nil {
		return "", err
	}
	pyproject, err := export.Pyproject(projectName(env.Name), meta)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "uvn-lock-*")
	if err != nil {
		return "", &FSError{Op: "create", Path: os.TempDir(), Err: err}
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(pyproject), 0644); err != nil {
		return "", &FSError{Op: "write", Path: dir, Err: err}
	}
	if err := r.tool.Lock(ctx, dir, quiet); err != nil {
		return "", toolError(err)
	}

	lockPath := filepath.Join(dir, "uv.lock")
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return "", &FSError{Op: "read", Path: lockPath, Err: err}
	}
	return string(data), nil
}

// readOptional returns the contents of path, or nil when it doesn't exist.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &FSError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// projectName turns an environment name into a usable project name;
// local ".venv" environments become "venv".
func projectName(name string) string {
	if trimmed := strings.TrimLeft(name, "."); trimmed != "" {
		return trimmed
	}
	return "project"
}
