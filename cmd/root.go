// Package cmd defines the CLI commands for uvn.
package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	directory string
	verbose   bool
	noColor   bool
	cfgFile   string
)

// rootCmd is the base command for the uvn CLI.
var rootCmd = &cobra.Command{
	Use:   "uvn",
	Short: "Manage uv virtual environments from one place",
	Long: `uvn keeps virtual environments created with uv under a single directory
(~/.virtualenvs by default) and lets you list, create, fork, export, activate
and remove them by name. Any unique prefix of a name works in its place.

Settings come from ~/.config/uvn/config.yaml, UVN_* environment variables and
flags, in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		initLogger(cmd)
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.EnablePrefixMatching = true

	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", "", "directory holding the environments (default ~/.virtualenvs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/uvn/config.yaml)")
}

func initLogger(cmd *cobra.Command) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
