package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/registry"
)

// completeNames completes the first argument with environment names.
func completeNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := registry.New(cfg.Dir, newTool(cfg, io.Discard, io.Discard)).Names()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	matches := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			matches = append(matches, name)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
