package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/pathutil"
	"github.com/Quidge/uvn/internal/registry"
)

var forkCmd = &cobra.Command{
	Use:   "fork NAME NEW",
	Short: "Copy an environment under a new name",
	Long: `Create NEW with the same interpreter build and packages as NAME.

Packages are reinstalled from a freeze of NAME rather than copied, so NEW is
an independent environment. Use --new-directory to create NEW somewhere other
than the environments directory.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeNames,
	RunE:              runFork,
}

var (
	forkLinkModeFlag string
	forkNewDirFlag   string
	forkQuietFlag    bool
)

func init() {
	rootCmd.AddCommand(forkCmd)
	forkCmd.Flags().StringVarP(&forkLinkModeFlag, "link-mode", "l", "", "how packages are linked: clone, copy, hardlink or symlink")
	forkCmd.Flags().StringVarP(&forkNewDirFlag, "new-directory", "n", "", "directory to create NEW in (default: the environments directory)")
	forkCmd.Flags().BoolVarP(&forkQuietFlag, "quiet", "q", false, "suppress uv output")
}

func runFork(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	src, query, err := a.local(cmd, args[0])
	if err != nil {
		return err
	}

	dest := a.reg
	if forkNewDirFlag != "" {
		root, err := pathutil.Absolute(forkNewDirFlag)
		if err != nil {
			return err
		}
		dest = a.reg.WithRoot(root)
	}

	env, err := src.Fork(cmd.Context(), query, args[1], registry.ForkOptions{
		Destination: dest,
		LinkMode:    a.cfg.LinkMode,
		Quiet:       forkQuietFlag,
	})
	if err != nil {
		return err
	}

	if !forkQuietFlag {
		a.out.Successf("Forked `%s` into `%s` at %s", query, env.Name, env.Path)
	}
	return nil
}
