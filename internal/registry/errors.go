package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Quidge/uvn/internal/uv"
)

// ErrNotFound is returned when no environment matches a query.
var ErrNotFound = errors.New("environment not found")

// ErrAmbiguous is returned when a prefix matches multiple environments.
var ErrAmbiguous = errors.New("ambiguous environment name")

// AmbiguousNameError is returned when a prefix matches multiple environments.
// It includes the matching names for better error messages.
type AmbiguousNameError struct {
	Query   string
	Matches []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("%s: '%s' matches %d environments", ErrAmbiguous.Error(), e.Query, len(e.Matches))
}

func (e *AmbiguousNameError) Unwrap() error {
	return ErrAmbiguous
}

// ErrAlreadyExists is returned when a create or fork target already exists.
var ErrAlreadyExists = errors.New("environment already exists")

// ErrInvalidName is returned for names that aren't a single safe path segment.
var ErrInvalidName = errors.New("invalid environment name")

// ErrCorrupted is returned when an environment's interpreter is missing or broken.
var ErrCorrupted = errors.New("environment is corrupted")

// ErrUnsupportedFormat is returned for export targets with no known format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ErrSubprocess is matched by every *SubprocessError.
var ErrSubprocess = errors.New("subprocess failed")

// SubprocessError is returned when the external tool exits non-zero.
type SubprocessError struct {
	Command  []string
	ExitCode int
	Stderr   string
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("%s: `%s` exited with status %d", ErrSubprocess.Error(), strings.Join(e.Command, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *SubprocessError) Unwrap() error {
	return ErrSubprocess
}

// FSError is returned when a filesystem operation fails.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error {
	return e.Err
}

// toolError converts a tool exit failure into a *SubprocessError. Other errors
// (e.g. the binary is missing) are returned unchanged.
func toolError(err error) error {
	var exitErr *uv.ExitError
	if errors.As(err, &exitErr) {
		return &SubprocessError{
			Command:  exitErr.Args,
			ExitCode: exitErr.ExitCode,
			Stderr:   exitErr.Stderr,
		}
	}
	return err
}
