package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"modcompat/internal/modversion"
	"modcompat/internal/report"
	"modcompat/internal/store"
)

var (
	historyModule    string
	historyLimit     int
	historyFormat    string
	historyShowEntry bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved comparison runs",
	Long: `List comparison runs recorded with compare --save or store.enabled,
newest first.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show a saved run with its changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "", "Output format (human, json)")
	historyCmd.Flags().StringVar(&historyModule, "module", "", "Only list runs of this module")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs")
	historyShowCmd.Flags().BoolVar(&historyShowEntry, "show-suppressed", false, "List suppressed changes")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*store.Store, error) {
	return store.Open(app.cfg.Store.Path, app.logger)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	runs, err := s.ListRuns(historyModule, historyLimit)
	if err != nil {
		return err
	}
	if firstNonEmpty(historyFormat, app.cfg.Report.Format) == "json" {
		if runs == nil {
			runs = []*store.Run{}
		}
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	writeRunsHuman(cmd.OutOrStdout(), runs)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	run, err := s.GetRun(args[0])
	if err != nil {
		return err
	}
	if firstNonEmpty(historyFormat, app.cfg.Report.Format) == "json" {
		return writeJSON(cmd.OutOrStdout(), run)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s, saved %s\n", run.ID, humanize.Time(run.CreatedAt))
	if run.OldDigest != "" || run.NewDigest != "" {
		fmt.Fprintf(w, "Snapshots: %s → %s\n", shortDigest(run.OldDigest), shortDigest(run.NewDigest))
	}
	fmt.Fprintln(w)
	writeReportHuman(w, reportFromRun(run), historyShowEntry)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}

func writeRunsHuman(w io.Writer, runs []*store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODULE\tVERSIONS\tCHANGES\tREQUIRED\tVERDICT\tCREATED")
	for _, r := range runs {
		verdict := "-"
		if r.Sufficient != nil {
			verdict = "ok"
			if !*r.Sufficient {
				verdict = "insufficient"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s → %s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Module, orUnknown(r.OldVersion), orUnknown(r.NewVersion),
			r.EntryCount, r.Required, verdict, humanize.Time(r.CreatedAt))
	}
	_ = tw.Flush()
}

// reportFromRun rebuilds a report from stored entries so the summary and
// verdict are computed the same way compare does.
func reportFromRun(run *store.Run) *report.Report {
	return report.New(run.Module, parseVersionOrZero(run.OldVersion), parseVersionOrZero(run.NewVersion), run.Entries)
}

// parseVersionOrZero returns the zero version for empty or unparsable s.
func parseVersionOrZero(s string) modversion.Version {
	v, err := modversion.Parse(s)
	if err != nil {
		return modversion.Version{}
	}
	return v
}

func shortDigest(d string) string {
	if d == "" {
		return "?"
	}
	if _, hex, ok := strings.Cut(d, ":"); ok && len(hex) > 12 {
		return d[:len(d)-len(hex)] + hex[:12]
	}
	return d
}
