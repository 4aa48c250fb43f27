// Package uv drives the uv command line. All calls go through a Runner so the
// subprocess boundary stays narrow: argv in, exit code and output out.
package uv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// DefaultBinary is the executable used when no other is configured.
const DefaultBinary = "uv"

// Command describes a single subprocess invocation.
type Command struct {
	// Name overrides the runner's binary (used to run an environment's interpreter).
	Name string

	// Args are passed to the binary as-is.
	Args []string

	// Env holds extra KEY=VALUE pairs appended to the current environment.
	Env []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Stdout and Stderr, when set, receive a live copy of the output.
	// Output is captured in the Result regardless.
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the outcome of a finished subprocess.
type Result struct {
	// Name is the executable that ran.
	Name string

	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes commands. A non-zero exit status is reported through
// Result.ExitCode, not as an error; errors mean the process could not run.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Binary is the uv executable. Defaults to DefaultBinary.
	Binary string

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)

// Run starts the command and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	name := c.Name
	if name == "" {
		name = r.Binary
	}
	if name == "" {
		name = DefaultBinary
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("running command", "bin", name, "args", c.Args, "dir", c.Dir)

	cmd := exec.CommandContext(ctx, name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.Stdout)
	}
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	}

	err := cmd.Run()
	res := Result{
		Name:   name,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.Debug("command exited", "bin", name, "code", res.ExitCode)
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return res, nil
}
