package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/registry"
)

var exportCmd = &cobra.Command{
	Use:   "export NAME [TARGET]",
	Short: "Export an environment's packages",
	Long: `Export the packages installed in an environment.

TARGET is a format printed to stdout or a file to write:

  txt    requirements, one "name==version" pin per line (default)
  py     inline script metadata for "uv run"
  toml   a pyproject.toml [project] table
  lock   a uv.lock resolved from the installed packages

A file is written in the format matching its extension. Scripts (.py) get
the metadata block prepended, replacing any existing one, and an existing
pyproject.toml has its [project] table updated.`,
	Example: `  uvn export demo
  uvn export demo requirements.txt --lower
  uvn export demo script.py`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeExport,
	RunE:              runExport,
}

var (
	exportShortFlag       bool
	exportLowerFlag       bool
	exportNormalizeFlag   bool
	exportVerboseLockFlag bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVarP(&exportShortFlag, "short", "s", false, "only export top-level packages")
	exportCmd.Flags().BoolVarP(&exportLowerFlag, "lower", "l", false, "use the installed versions as lower bounds")
	exportCmd.Flags().BoolVarP(&exportNormalizeFlag, "normalize", "n", false, "normalize package names")
	exportCmd.Flags().BoolVarP(&exportVerboseLockFlag, "verbose-lock", "V", false, "show uv output while locking")
}

func runExport(cmd *cobra.Command, args []string) error {
	target := string(registry.FormatRequirements)
	if len(args) == 2 {
		target = args[1]
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, query, err := a.local(cmd, args[0])
	if err != nil {
		return err
	}

	opts := registry.ExportOptions{
		Short:      exportShortFlag,
		LowerBound: exportLowerFlag,
		Normalize:  exportNormalizeFlag,
		Quiet:      !exportVerboseLockFlag,
	}

	if format, ok := registry.ParseFormat(target); ok {
		text, err := reg.Export(cmd.Context(), query, format, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out.Out(), text)
		return nil
	}

	format, err := reg.ExportFile(cmd.Context(), query, target, opts)
	if err != nil {
		return err
	}
	a.out.Successf("Exported `%s` as %s to %s", query, format, target)
	return nil
}

func completeExport(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeNames(cmd, args, toComplete)
	case 1:
		formats := make([]string, 0, len(registry.Formats))
		for _, f := range registry.Formats {
			formats = append(formats, string(f))
		}
		return formats, cobra.ShellCompDirectiveDefault
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
