package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
)

// SetVersionInfo sets the build-time version information.
func SetVersionInfo(version, commit string) {
	buildVersion = version
	buildCommit = commit
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of uvn",
	Long: `Print the version of uvn. With --verbose the version of the uv
binary in use is printed as well.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "uvn %s (commit: %s)\n", buildVersion, buildCommit)
	if !verbose {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client := newClient(cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	uvVersion, err := client.Version(cmd.Context())
	if err != nil {
		writer(cmd).Warning(fmt.Sprintf("failed to run `%s`: %v", cfg.UV, err))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), uvVersion)
	return nil
}
