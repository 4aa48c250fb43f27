package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Quidge/uvn/internal/registry"
	"github.com/Quidge/uvn/internal/ui"
)

// exitError ends the process with code after any message was already shown.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// FormatAmbiguousNameError formats an AmbiguousNameError into a message that
// lists every matching environment.
func FormatAmbiguousNameError(err *registry.AmbiguousNameError) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ambiguous environment name %q: matches %d environments\n", err.Query, len(err.Matches)))
	sb.WriteString("\nMatching environments:\n")

	for _, name := range err.Matches {
		sb.WriteString(fmt.Sprintf("  %s\n", name))
	}

	sb.WriteString("\nHint: use a longer prefix or the full name")

	return errors.New(sb.String())
}

// HandleError prints err to errOut and returns the process exit code: the
// tool's own status for subprocess failures, 1 otherwise.
func HandleError(err error, errOut io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	w := ui.NewWriter(errOut, errOut, noColor)

	var ambiguous *registry.AmbiguousNameError
	if errors.As(err, &ambiguous) {
		w.Error(FormatAmbiguousNameError(ambiguous).Error())
		return 1
	}

	w.Error(err.Error())

	var subErr *registry.SubprocessError
	if errors.As(err, &subErr) && subErr.ExitCode > 0 {
		return subErr.ExitCode
	}
	return 1
}
