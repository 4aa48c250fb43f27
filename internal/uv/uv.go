package uv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Link modes accepted by uv's --link-mode flag.
const (
	LinkClone    = "clone"
	LinkCopy     = "copy"
	LinkHardlink = "hardlink"
	LinkSymlink  = "symlink"
)

// LinkModes lists every valid link mode.
var LinkModes = []string{LinkClone, LinkCopy, LinkHardlink, LinkSymlink}

// IsValidLinkMode reports whether mode is empty or a known link mode.
func IsValidLinkMode(mode string) bool {
	if mode == "" {
		return true
	}
	for _, m := range LinkModes {
		if m == mode {
			return true
		}
	}
	return false
}

// ErrExit is matched by every *ExitError.
var ErrExit = errors.New("uv exited with non-zero status")

// ExitError is returned when uv (or an interpreter it manages) exits non-zero.
// Stderr is empty when the output was relayed live.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: `%s` exited with status %d", ErrExit.Error(), strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return ErrExit
}

// VenvOptions configures `uv venv`.
type VenvOptions struct {
	// Python is the interpreter request (version, implementation, or path).
	Python string

	// LinkMode is passed as --link-mode when set.
	LinkMode string

	// Quiet passes --quiet.
	Quiet bool

	// ExtraArgs are appended before the target path.
	ExtraArgs []string
}

// InstallOptions configures `uv pip install`.
type InstallOptions struct {
	LinkMode string
	Quiet    bool
}

// Client builds uv invocations and runs them through a Runner.
type Client struct {
	runner Runner
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithOutput sets where relayed subprocess output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Client) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// New returns a Client that executes commands with runner.
func New(runner Runner, opts ...Option) *Client {
	c := &Client{
		runner: runner,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Venv creates a virtual environment at path. Output is relayed.
func (c *Client) Venv(ctx context.Context, path string, opts VenvOptions) error {
	args := []string{"venv", "--no-project", "--no-config", "--python-preference", "only-managed"}
	if opts.Python != "" {
		args = append(args, "--python", opts.Python)
	}
	if opts.LinkMode != "" {
		args = append(args, "--link-mode", opts.LinkMode)
	}
	if opts.Quiet {
		args = append(args, "--quiet")
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, path)

	_, err := c.run(ctx, Command{Args: args, Stdout: c.stdout, Stderr: c.stderr})
	return err
}

// Freeze returns `uv pip freeze` output for the interpreter at python.
func (c *Client) Freeze(ctx context.Context, python string) (string, error) {
	res, err := c.run(ctx, Command{Args: []string{"pip", "freeze", "--python", python}})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Tree returns the top-level packages of the interpreter at python, one
// `name vX.Y.Z` line each.
func (c *Client) Tree(ctx context.Context, python string) (string, error) {
	res, err := c.run(ctx, Command{Args: []string{"pip", "tree", "--depth", "0", "--python", python}})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Install installs every requirement listed in requirementsFile into the
// interpreter at python. Output is relayed.
func (c *Client) Install(ctx context.Context, python, requirementsFile string, opts InstallOptions) error {
	args := []string{"pip", "install", "--python", python, "-r", requirementsFile}
	if opts.LinkMode != "" {
		args = append(args, "--link-mode", opts.LinkMode)
	}
	if opts.Quiet {
		args = append(args, "--quiet")
	}

	_, err := c.run(ctx, Command{Args: args, Stdout: c.stdout, Stderr: c.stderr})
	return err
}

// Lock runs `uv lock` for the project in dir.
func (c *Client) Lock(ctx context.Context, dir string, quiet bool) error {
	args := []string{"lock", "--directory", dir}
	if quiet {
		args = append(args, "--quiet")
	}

	cmd := Command{Args: args}
	if !quiet {
		cmd.Stdout = c.stdout
		cmd.Stderr = c.stderr
	}
	_, err := c.run(ctx, cmd)
	return err
}

// PythonVersion asks the interpreter at python for its platform version.
func (c *Client) PythonVersion(ctx context.Context, python string) (string, error) {
	res, err := c.run(ctx, Command{
		Name: python,
		Args: []string{"-c", "import platform as p; print(p.python_version(), end='')"},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Version returns the output of `uv --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, Command{Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (c *Client) run(ctx context.Context, cmd Command) (Result, error) {
	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		name := res.Name
		if name == "" {
			name = cmd.Name
		}
		if name == "" {
			name = DefaultBinary
		}
		args := append([]string{name}, cmd.Args...)
		stderr := res.Stderr
		if cmd.Stderr != nil {
			// Already shown to the user.
			stderr = ""
		}
		return res, &ExitError{Args: args, ExitCode: res.ExitCode, Stderr: stderr}
	}
	return res, nil
}
