package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or initialize the configuration",
	Long: `View or initialize the uvn configuration.

Subcommands:
  show   Print the effective configuration
  init   Write a commented config file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, UVN_*
environment variables and flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configInitForceFlag bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForceFlag, "force", false, "overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	if err := config.WriteTemplate(path, configInitForceFlag); err != nil {
		return err
	}
	writer(cmd).Successf("Wrote %s", path)
	return nil
}
