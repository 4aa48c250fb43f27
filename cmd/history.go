package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Quidge/uvn/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history [NAME]",
	Short: "Show recent create, fork and remove operations",
	Long: `Show the operations uvn performed, newest first.

With NAME, only operations on that environment (or forks of it) are shown.
History is kept in ~/.local/share/uvn/journal.db unless the journal config
key is false.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeNames,
	RunE:              runHistory,
}

var historyLimitFlag int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "maximum number of entries to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimitFlag < 0 {
		return fmt.Errorf("invalid limit %d", historyLimitFlag)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Journal {
		a.out.Echo("History is disabled. Set `journal: true` in the config to enable it.")
		return nil
	}
	if a.journal == nil {
		return errors.New("failed to open history database")
	}

	opts := journal.ListOptions{Limit: historyLimitFlag}
	if len(args) == 1 {
		opts.Name = args[0]
	}

	events, err := a.journal.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		a.out.Echo("No history.")
		return nil
	}

	w := tabwriter.NewWriter(a.out.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, a.out.Header("WHEN")+"\t"+a.out.Header("ACTION")+"\t"+a.out.Header("NAME")+"\t"+a.out.Header("FROM")+"\t"+a.out.Header("PYTHON"))
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(ev.CreatedAt), ev.Action, a.out.Name(ev.Name), dash(ev.Source), a.out.Version(dash(ev.Python)))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
