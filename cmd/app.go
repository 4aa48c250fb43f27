package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Quidge/uvn/internal/config"
	"github.com/Quidge/uvn/internal/journal"
	"github.com/Quidge/uvn/internal/registry"
	"github.com/Quidge/uvn/internal/ui"
	"github.com/Quidge/uvn/internal/uv"
)

// localName is the name that refers to the .venv of the working directory.
const localName = "."

// newTool builds the tool the registry drives. Tests replace it.
var newTool = func(cfg config.Config, out, errOut io.Writer) registry.Tool {
	return newClient(cfg, out, errOut)
}

func newClient(cfg config.Config, out, errOut io.Writer) *uv.Client {
	runner := &uv.ExecRunner{Binary: cfg.UV, Logger: slog.Default()}
	return uv.New(runner, uv.WithOutput(out, errOut))
}

// app holds what a single command invocation needs.
type app struct {
	cfg     config.Config
	reg     *registry.Registry
	out     *ui.Writer
	journal *journal.DB
}

// loadConfig reads the layered configuration, binding the flags of cmd that
// map onto config keys.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := map[string]*pflag.Flag{
		config.KeyDir:      cmd.Flags().Lookup("directory"),
		config.KeyPython:   cmd.Flags().Lookup("python"),
		config.KeyLinkMode: cmd.Flags().Lookup("link-mode"),
		config.KeyShell:    cmd.Flags().Lookup("shell"),
	}
	return config.Load(cfgFile, flags)
}

func writer(cmd *cobra.Command) *ui.Writer {
	return ui.NewWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)
}

// newApp loads the configuration and builds the registry. Tool output is
// relayed to stderr so stdout only carries command results.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, out: writer(cmd)}

	opts := []registry.Option{registry.WithLogger(slog.Default())}
	if cfg.Journal {
		a.journal = openJournal(cfg)
		if a.journal != nil {
			opts = append(opts, registry.WithJournal(a.journal))
		}
	}

	tool := newTool(cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
	a.reg = registry.New(cfg.Dir, tool, opts...)
	slog.Debug("registry ready", "root", cfg.Dir)
	return a, nil
}

// openJournal opens the history database. Failures only lose history, so
// they are logged and nil is returned.
func openJournal(cfg config.Config) *journal.DB {
	path := cfg.JournalPath
	if path == "" {
		var err error
		path, err = journal.DefaultPath()
		if err != nil {
			slog.Warn("journal disabled", "error", err)
			return nil
		}
	}
	db, err := journal.Open(path)
	if err != nil {
		slog.Warn("journal disabled", "path", path, "error", err)
		return nil
	}
	return db
}

// Close releases the journal.
func (a *app) Close() {
	if a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		slog.Debug("failed to close journal", "error", err)
	}
}

// local maps the "." name onto the .venv of the working directory unless
// --directory was given.
func (a *app) local(cmd *cobra.Command, name string) (*registry.Registry, string, error) {
	if name != localName || cmd.Flags().Changed("directory") {
		return a.reg, name, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return a.reg.WithRoot(wd), ".venv", nil
}
