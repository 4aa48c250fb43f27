package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/registry"
)

var createCmd = &cobra.Command{
	Use:   "create NAME [-- UV_ARGS...]",
	Short: "Create an environment",
	Long: `Create a new environment called NAME with uv.

The interpreter comes from --python, the python config key or UV_PYTHON, and
is always a uv-managed build. Arguments after -- are passed to "uv venv"
unchanged. Use "." as NAME to create .venv in the current directory.`,
	Example: `  uvn create demo -p 3.12
  uvn create demo -- --seed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

var (
	createPythonFlag   string
	createLinkModeFlag string
	createQuietFlag    bool
)

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createPythonFlag, "python", "p", "", "interpreter version or build to use")
	createCmd.Flags().StringVarP(&createLinkModeFlag, "link-mode", "l", "", "how packages are linked: clone, copy, hardlink or symlink")
	createCmd.Flags().BoolVarP(&createQuietFlag, "quiet", "q", false, "suppress uv output")
}

func runCreate(cmd *cobra.Command, args []string) error {
	if dash := cmd.ArgsLenAtDash(); dash > 1 || (dash == -1 && len(args) > 1) {
		return errors.New("create takes a single NAME; pass uv arguments after --")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, name, err := a.local(cmd, args[0])
	if err != nil {
		return err
	}

	env, err := reg.Create(cmd.Context(), name, registry.CreateOptions{
		Python:    a.cfg.Python,
		LinkMode:  a.cfg.LinkMode,
		Quiet:     createQuietFlag,
		ExtraArgs: args[1:],
	})
	if err != nil {
		return err
	}

	if !createQuietFlag {
		a.out.Successf("Created `%s` (Python %s) at %s", env.Name, env.Version, env.Path)
	}
	return nil
}
