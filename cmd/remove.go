package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/registry"
	"github.com/Quidge/uvn/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove an environment",
	Long: `Remove an environment and everything installed in it.

NAME can be a prefix if it uniquely identifies an environment. When run
interactively, confirmation is required unless -f is used. Environments whose
interpreter is missing are only removed with -f.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeNames,
	RunE:              runRemove,
}

var removeForceFlag bool

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().BoolVarP(&removeForceFlag, "force", "f", false, "skip confirmation and remove corrupted environments")
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, query, err := a.local(cmd, args[0])
	if err != nil {
		return err
	}

	name, err := reg.Resolve(query)
	if err != nil {
		return err
	}

	// Confirm interactively unless -f is used
	if !removeForceFlag && ui.IsTerminal(cmd.InOrStdin()) {
		fmt.Fprintf(a.out.Err(), "Remove environment %s? [y/N] ", name)
		reader := bufio.NewReader(cmd.InOrStdin())
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			a.out.Echo("Cancelled.")
			return nil
		}
	}

	if _, err := reg.Remove(cmd.Context(), name, registry.RemoveOptions{Force: removeForceFlag}); err != nil {
		if errors.Is(err, registry.ErrCorrupted) {
			a.out.Echof("Environment `%s` was not removed!", name)
			return fmt.Errorf("%w; use --force to remove it anyway", err)
		}
		return err
	}

	a.out.Echof("Environment `%s` was removed!", name)
	return nil
}
