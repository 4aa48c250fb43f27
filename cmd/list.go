package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Quidge/uvn/internal/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List environments",
	Long: `List every environment in the environments directory with its Python
version and location.

Use --size to measure each environment on disk, and -o json or -o yaml for
machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listSizeFlag        bool
	listFullVersionFlag bool
	listOutputFlag      string
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listSizeFlag, "size", "s", false, "show the size of each environment")
	listCmd.Flags().BoolVarP(&listFullVersionFlag, "full-version", "f", false, "show the full interpreter build")
	listCmd.Flags().StringVarP(&listOutputFlag, "output", "o", "table", "output format: table, json or yaml")
}

// listEntry is the machine-readable form of an environment.
type listEntry struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Status      string `json:"status" yaml:"status"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	FullVersion string `json:"full_version,omitempty" yaml:"full_version,omitempty"`
	Size        *int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	switch listOutputFlag {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (valid: table, json, yaml)", listOutputFlag)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	envs, err := a.reg.List(cmd.Context(), registry.ListOptions{Size: listSizeFlag})
	if err != nil {
		return err
	}

	switch listOutputFlag {
	case "json":
		enc := json.NewEncoder(a.out.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(entries(envs))
	case "yaml":
		enc := yaml.NewEncoder(a.out.Out())
		enc.SetIndent(2)
		if err := enc.Encode(entries(envs)); err != nil {
			return fmt.Errorf("failed to encode environments: %w", err)
		}
		return enc.Close()
	}

	if len(envs) > 0 {
		printTable(a, envs)
	}
	a.out.Echof("Found %d environments in `%s`.", len(envs), a.reg.Root())
	return nil
}

func entries(envs []*registry.Environment) []listEntry {
	out := make([]listEntry, 0, len(envs))
	for _, env := range envs {
		e := listEntry{
			Name:        env.Name,
			Path:        env.Path,
			Status:      string(env.Status),
			Version:     env.Version,
			FullVersion: env.FullVersion,
		}
		if listSizeFlag {
			size := env.SizeBytes
			e.Size = &size
		}
		out = append(out, e)
	}
	return out
}

func printTable(a *app, envs []*registry.Environment) {
	w := tabwriter.NewWriter(a.out.Out(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	header := a.out.Header("NAME") + "\t" + a.out.Header("VERSION")
	if listSizeFlag {
		header += "\t" + a.out.Header("SIZE")
	}
	fmt.Fprintln(w, header+"\t"+a.out.Header("PATH"))

	for _, env := range envs {
		version := env.Version
		if listFullVersionFlag && env.FullVersion != "" {
			version = env.FullVersion
		}
		versionCell := a.out.Version(version)
		if env.Status == registry.StatusCorrupted {
			versionCell = a.out.Warn("corrupted")
		}

		row := a.out.Name(env.Name) + "\t" + versionCell
		if listSizeFlag {
			row += "\t" + a.out.Size(env.ReadableSize())
		}
		fmt.Fprintln(w, row+"\t"+a.out.Path(env.Path))
	}
}
