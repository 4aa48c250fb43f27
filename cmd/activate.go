package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/registry"
	"github.com/Quidge/uvn/internal/shell"
)

var activateCmd = &cobra.Command{
	Use:   "activate NAME",
	Short: "Print the command that activates an environment",
	Long: `Print the command that activates NAME in the current shell.

The shell is taken from --shell, the shell config key or $SHELL. Evaluate
the output to activate, for example:

  eval "$(uvn activate demo)"

When NAME can't be resolved only a diagnostic is printed, so evaluating the
output is always safe.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeNames,
	RunE:              runActivate,
}

var (
	activateShellFlag string
	activateQuietFlag bool
)

func init() {
	rootCmd.AddCommand(activateCmd)
	activateCmd.Flags().StringVarP(&activateShellFlag, "shell", "s", "", "shell to activate in: "+strings.Join(shell.Names(), ", "))
	activateCmd.Flags().BoolVarP(&activateQuietFlag, "quiet", "q", false, "suppress diagnostics")
}

func runActivate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	kind, err := detectShell(a.cfg.Shell)
	if err != nil {
		if !activateQuietFlag {
			a.out.Error(err.Error())
		}
		return &exitError{code: 1}
	}

	reg, query, err := a.local(cmd, args[0])
	if err != nil {
		return err
	}

	line, err := reg.Activate(query, kind)
	if err != nil {
		if !activateQuietFlag {
			reportUnresolved(a, query, err)
		}
		return nil
	}

	a.out.Println(line)
	return nil
}

func detectShell(name string) (shell.Kind, error) {
	if name != "" {
		return shell.Parse(name)
	}
	return shell.Detect()
}

func reportUnresolved(a *app, query string, err error) {
	var ambiguous *registry.AmbiguousNameError
	switch {
	case errors.As(err, &ambiguous):
		a.out.Echo(FormatAmbiguousNameError(ambiguous).Error())
	case errors.Is(err, registry.ErrNotFound):
		a.out.Echof("Environment `%s` not found!", query)
	default:
		a.out.Echo(err.Error())
	}
}
