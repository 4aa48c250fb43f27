// Package registry manages named virtual environments kept as immediate
// subdirectories of a root directory. Environment construction and package
// operations are delegated to the external tool.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Quidge/uvn/internal/journal"
	"github.com/Quidge/uvn/internal/pathutil"
	"github.com/Quidge/uvn/internal/shell"
	"github.com/Quidge/uvn/internal/uv"
)

// Tool is the subset of the external tool the registry needs.
// *uv.Client implements it.
type Tool interface {
	Venv(ctx context.Context, path string, opts uv.VenvOptions) error
	Freeze(ctx context.Context, python string) (string, error)
	Tree(ctx context.Context, python string) (string, error)
	Install(ctx context.Context, python, requirementsFile string, opts uv.InstallOptions) error
	Lock(ctx context.Context, dir string, quiet bool) error
	PythonVersion(ctx context.Context, python string) (string, error)
}

// Recorder stores a history of completed operations. *journal.DB implements it.
type Recorder interface {
	Record(ctx context.Context, ev *journal.Event) error
}

// Registry manages the environments under one root directory.
type Registry struct {
	root    string
	tool    Tool
	logger  *slog.Logger
	journal Recorder
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithJournal records completed operations to rec.
func WithJournal(rec Recorder) Option {
	return func(r *Registry) {
		r.journal = rec
	}
}

// New returns a Registry rooted at root.
func New(root string, tool Tool, opts ...Option) *Registry {
	r := &Registry{
		root:   filepath.Clean(root),
		tool:   tool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the directory environments live in.
func (r *Registry) Root() string {
	return r.root
}

// WithRoot returns a copy of r rooted at root.
func (r *Registry) WithRoot(root string) *Registry {
	clone := *r
	clone.root = filepath.Clean(root)
	return &clone
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.root, name)
}

// Names returns the names of all environment directories, sorted. A missing
// root has no environments.
func (r *Registry) Names() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &FSError{Op: "read", Path: r.root, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || (e.Type()&fs.ModeSymlink != 0 && pathutil.ExistsAndIsDir(r.path(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ListOptions controls List.
type ListOptions struct {
	// Size measures each environment on disk.
	Size bool
}

// List returns every environment under the root, sorted by name.
func (r *Registry) List(ctx context.Context, opts ListOptions) ([]*Environment, error) {
	names, err := r.Names()
	if err != nil {
		return nil, err
	}

	envs := make([]*Environment, 0, len(names))
	for _, name := range names {
		env := r.inspect(ctx, name)
		if opts.Size {
			size, err := pathutil.DirSize(env.Path)
			if err != nil {
				return nil, &FSError{Op: "measure", Path: env.Path, Err: err}
			}
			env.SizeBytes = size
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// Resolve returns the environment name matching query. An exact name wins;
// otherwise query must be a prefix of exactly one name.
func (r *Registry) Resolve(query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}

	names, err := r.Names()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, name := range names {
		if name == query {
			return name, nil
		}
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, query)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousNameError{Query: query, Matches: matches}
	}
}

// Get resolves query and inspects the matching environment.
func (r *Registry) Get(ctx context.Context, query string) (*Environment, error) {
	name, err := r.Resolve(query)
	if err != nil {
		return nil, err
	}
	return r.inspect(ctx, name), nil
}

// CreateOptions configures Create.
type CreateOptions struct {
	// Python is the interpreter request passed to the tool.
	Python string

	// LinkMode selects how packages are linked from the cache.
	LinkMode string

	// Quiet suppresses tool output.
	Quiet bool

	// ExtraArgs are passed through to the tool.
	ExtraArgs []string
}

// Create makes a new environment called name. A failed tool run is not
// cleaned up.
func (r *Registry) Create(ctx context.Context, name string, opts CreateOptions) (*Environment, error) {
	env, err := r.create(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	r.record(ctx, &journal.Event{
		Action: journal.ActionCreate,
		Name:   name,
		Python: opts.Python,
		Root:   r.root,
	})
	return env, nil
}

func (r *Registry) create(ctx context.Context, name string, opts CreateOptions) (*Environment, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	path := r.path(name)
	if pathutil.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	if err := os.MkdirAll(r.root, 0755); err != nil {
		return nil, &FSError{Op: "create", Path: r.root, Err: err}
	}

	r.logger.Debug("creating environment", "name", name, "path", path, "python", opts.Python)
	err := r.tool.Venv(ctx, path, uv.VenvOptions{
		Python:    opts.Python,
		LinkMode:  opts.LinkMode,
		Quiet:     opts.Quiet,
		ExtraArgs: opts.ExtraArgs,
	})
	if err != nil {
		return nil, toolError(err)
	}
	return r.inspect(ctx, name), nil
}

// RemoveOptions configures Remove.
type RemoveOptions struct {
	// Force removes the directory even when the environment is corrupted.
	Force bool
}

// Remove deletes the environment matching query and returns its name.
func (r *Registry) Remove(ctx context.Context, query string, opts RemoveOptions) (string, error) {
	name, err := r.Resolve(query)
	if err != nil {
		return "", err
	}

	if !opts.Force {
		if env := r.inspect(ctx, name); env.Status == StatusCorrupted {
			return "", fmt.Errorf("%w: %s", ErrCorrupted, name)
		}
	}

	path := r.path(name)
	r.logger.Debug("removing environment", "name", name, "path", path)
	if err := os.RemoveAll(path); err != nil {
		return "", &FSError{Op: "remove", Path: path, Err: err}
	}

	r.record(ctx, &journal.Event{
		Action: journal.ActionRemove,
		Name:   name,
		Root:   r.root,
	})
	return name, nil
}

// ForkOptions configures Fork.
type ForkOptions struct {
	// Destination is the registry the new environment is created in.
	// Defaults to the source registry.
	Destination *Registry

	LinkMode string
	Quiet    bool
}

// Fork creates target with the same interpreter and packages as the
// environment matching source. Packages are reinstalled rather than copied.
func (r *Registry) Fork(ctx context.Context, source, target string, opts ForkOptions) (*Environment, error) {
	src, err := r.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	if src.Status != StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, src.Name)
	}

	dest := r
	if opts.Destination != nil {
		dest = opts.Destination
	}

	frozen, err := r.tool.Freeze(ctx, src.Python)
	if err != nil {
		return nil, toolError(err)
	}

	python := src.FullVersion
	if python == "" {
		python = src.Version
	}
	env, err := dest.create(ctx, target, CreateOptions{
		Python:   python,
		LinkMode: opts.LinkMode,
		Quiet:    opts.Quiet,
	})
	if err != nil {
		return nil, err
	}
	if env.Status != StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrCorrupted, env.Name)
	}

	if strings.TrimSpace(frozen) != "" {
		if err := dest.install(ctx, env, frozen, opts); err != nil {
			return nil, err
		}
	}

	dest.record(ctx, &journal.Event{
		Action: journal.ActionFork,
		Name:   env.Name,
		Source: src.Name,
		Python: python,
		Root:   dest.root,
	})
	return env, nil
}

func (r *Registry) install(ctx context.Context, env *Environment, requirements string, opts ForkOptions) error {
	f, err := os.CreateTemp("", "uvn-requirements-*.txt")
	if err != nil {
		return &FSError{Op: "create", Path: os.TempDir(), Err: err}
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(requirements); err != nil {
		f.Close()
		return &FSError{Op: "write", Path: f.Name(), Err: err}
	}
	if err := f.Close(); err != nil {
		return &FSError{Op: "write", Path: f.Name(), Err: err}
	}

	r.logger.Debug("installing packages", "env", env.Name, "requirements", f.Name())
	err = r.tool.Install(ctx, env.Python, f.Name(), uv.InstallOptions{
		LinkMode: opts.LinkMode,
		Quiet:    opts.Quiet,
	})
	return toolError(err)
}

// Activate returns the command that activates the environment matching query
// in the given shell.
func (r *Registry) Activate(query string, kind shell.Kind) (string, error) {
	name, err := r.Resolve(query)
	if err != nil {
		return "", err
	}
	return shell.ActivateCommand(kind, r.path(name))
}

// record writes ev to the journal. Failures are logged and otherwise ignored.
func (r *Registry) record(ctx context.Context, ev *journal.Event) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(ctx, ev); err != nil {
		r.logger.Warn("failed to record history", "action", ev.Action, "name", ev.Name, "error", err)
	}
}
