package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modcompat/internal/config"
	"modcompat/internal/facts"
	"modcompat/internal/modversion"
	"modcompat/internal/report"
	"modcompat/internal/store"
)

var (
	comparePairFlags       []string
	comparePlatformPaths   []string
	comparePlatformModules []string
	compareFormat          string
	compareSuppressions    string
	compareSave            bool
	compareFailOn          string
	compareAccessOrder     string
	compareShowSuppressed  bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [OLD NEW]",
	Short: "Compare two versions of a module",
	Long: `Compare module snapshot manifests and report every API change with its
binary, source and semver impact.

Manifests are TOML, YAML or JSON, optionally .zst or .gz compressed. Platform
modules such as java.base are looked up by name on the platform path.

Examples:
  modcompat compare lib-1.0.0.toml lib-2.0.0.toml
  modcompat compare --pair a-1.toml=a-2.toml --pair b-1.toml=b-2.toml
  modcompat compare old.yaml new.yaml --platform-path ./jdk21 --format=json
  modcompat compare old.toml new.toml --fail-on=major --save`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringArrayVar(&comparePairFlags, "pair", nil, "Additional OLD=NEW manifest pair (repeatable)")
	compareCmd.Flags().StringSliceVar(&comparePlatformPaths, "platform-path", nil, "Directory searched for platform manifests (repeatable, before config paths)")
	compareCmd.Flags().StringSliceVar(&comparePlatformModules, "platform-module", nil, "Platform modules to load (default from config)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "", "Output format (human, json)")
	compareCmd.Flags().StringVar(&compareSuppressions, "suppressions", "", "TOML file of accepted changes")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "Record the run in the history database")
	compareCmd.Flags().StringVar(&compareFailOn, "fail-on", "", "Exit 1 when the required bump reaches this level (major, minor, none)")
	compareCmd.Flags().StringVar(&compareAccessOrder, "access-order", "", "Accessibility ranking (standard, legacy)")
	compareCmd.Flags().BoolVar(&compareShowSuppressed, "show-suppressed", false, "List suppressed changes in human output")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := app.cfg
	pairs, err := parsePairs(args, comparePairFlags)
	if err != nil {
		return err
	}

	opts, err := compareOptionsFrom(cfg)
	if err != nil {
		return err
	}
	failOn := cfg.FailOn()
	if compareFailOn != "" {
		if failOn, err = modversion.ParseBump(compareFailOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}
	format := firstNonEmpty(compareFormat, cfg.Report.Format)

	results, err := runPairs(cmd.Context(), pairs, opts)
	if err != nil {
		return err
	}
	for _, s := range opts.Suppressions.Unused() {
		app.logger.Warn("Suppression matched nothing", "kind", s.Kind, "subject", s.Subject)
	}

	if compareSave || cfg.Store.Enabled {
		if err := saveRuns(cmd.ErrOrStderr(), cfg, results); err != nil {
			return err
		}
	}
	if err := writeResults(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}
	return policyFailure(results, failOn)
}

// compareOptionsFrom merges command flags over cfg.
func compareOptionsFrom(cfg *config.Config) (compareOptions, error) {
	opts := compareOptions{
		PlatformPaths:   append(append([]string(nil), comparePlatformPaths...), cfg.Compare.PlatformPaths...),
		PlatformModules: cfg.Compare.PlatformModules,
		CacheSize:       cfg.Registry.CacheSize,
		Order:           cfg.AccessOrder(),
		Parallelism:     cfg.Compare.Parallelism,
		Logger:          app.logger,
	}
	if len(comparePlatformModules) > 0 {
		opts.PlatformModules = comparePlatformModules
	}
	if compareAccessOrder != "" {
		order, err := facts.ParseAccessOrder(compareAccessOrder)
		if err != nil {
			return opts, fmt.Errorf("--access-order: %w", err)
		}
		opts.Order = order
	}
	if path := firstNonEmpty(compareSuppressions, cfg.Report.Suppressions); path != "" {
		s, err := report.LoadSuppressions(path)
		if err != nil {
			return opts, err
		}
		opts.Suppressions = s
	}
	return opts, nil
}

func writeResults(w io.Writer, format string, results []*pairResult) error {
	reports := make([]*report.Report, len(results))
	for i, r := range results {
		reports[i] = r.Report
	}
	switch format {
	case "json":
		if len(reports) == 1 {
			return writeJSON(w, reports[0])
		}
		return writeJSON(w, reports)
	case "human", "":
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeReportHuman(w, r, compareShowSuppressed)
		}
		return nil
	}
	return fmt.Errorf("unsupported format: %s", format)
}

func saveRuns(log io.Writer, cfg *config.Config, results []*pairResult) error {
	s, err := store.Open(cfg.Store.Path, app.logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	for _, r := range results {
		run := store.NewRun(r.Report, r.OldDigest, r.NewDigest)
		if err := s.SaveRun(run); err != nil {
			return err
		}
		fmt.Fprintf(log, "Saved run %s (%s)\n", run.ID, run.Module)
	}
	return nil
}

// policyFailure returns an exit status 1 error when any pair requires at
// least failOn, or took a version step too small for its changes.
func policyFailure(results []*pairResult, failOn modversion.Bump) error {
	var reasons []string
	for _, r := range results {
		rep := r.Report
		if failOn != modversion.BumpNone && rep.Summary.Required >= failOn {
			reasons = append(reasons, fmt.Sprintf("%s: changes require a %s version bump (--fail-on %s)",
				rep.Module, rep.Summary.Required, failOn))
		}
		if v := rep.Verdict; v != nil && !v.Sufficient {
			reasons = append(reasons, rep.Module+": "+v.String())
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return &exitError{code: 1, msg: strings.Join(reasons, "\n")}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
