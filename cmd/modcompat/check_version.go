package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"modcompat/internal/diff"
	"modcompat/internal/modversion"
)

var checkVersionCmd = &cobra.Command{
	Use:   "check-version OLD NEW",
	Short: "Check that a release took a large enough version step",
	Long: `Compare two manifests and print only the versioning verdict. Exits 1 when
the version step is smaller than the changes require.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheckVersion,
}

var (
	kindsCategory string
	kindsFormat   string
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List every change kind with its compatibility impact",
	Args:  cobra.NoArgs,
	RunE:  runKinds,
}

func init() {
	checkVersionCmd.Flags().StringSliceVar(&comparePlatformPaths, "platform-path", nil, "Directory searched for platform manifests (repeatable, before config paths)")
	checkVersionCmd.Flags().StringVar(&compareSuppressions, "suppressions", "", "TOML file of accepted changes")
	kindsCmd.Flags().StringVar(&kindsCategory, "category", "", "Only list kinds of this category (module, class, field, method, constructor, enum)")
	kindsCmd.Flags().StringVar(&kindsFormat, "format", "", "Output format (human, json)")

	rootCmd.AddCommand(checkVersionCmd)
	rootCmd.AddCommand(kindsCmd)
}

func runCheckVersion(cmd *cobra.Command, args []string) error {
	opts, err := compareOptionsFrom(app.cfg)
	if err != nil {
		return err
	}
	results, err := runPairs(cmd.Context(), []modulePair{{Old: args[0], New: args[1]}}, opts)
	if err != nil {
		return err
	}
	r := results[0].Report
	if r.Verdict == nil {
		return fmt.Errorf("%s: both manifests must declare a module version", r.Module)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Module, r.Verdict)
	if !r.Verdict.Sufficient {
		return &exitError{code: 1}
	}
	return nil
}

type kindInfo struct {
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	BinaryCompatible bool            `json:"binaryCompatible"`
	SourceCompatible bool            `json:"sourceCompatible"`
	Semver           modversion.Bump `json:"semver"`
	Description      string          `json:"description"`
}

func runKinds(cmd *cobra.Command, args []string) error {
	var kinds []kindInfo
	for _, k := range diff.Kinds() {
		if kindsCategory != "" && !strings.EqualFold(string(k.Category), kindsCategory) {
			continue
		}
		kinds = append(kinds, kindInfo{
			Name:             k.Name,
			Category:         string(k.Category),
			BinaryCompatible: k.Binary,
			SourceCompatible: k.Source,
			Semver:           k.Semver,
			Description:      k.Description,
		})
	}
	if len(kinds) == 0 {
		return fmt.Errorf("no kinds in category %q", kindsCategory)
	}
	if firstNonEmpty(kindsFormat, app.cfg.Report.Format) == "json" {
		return writeJSON(cmd.OutOrStdout(), kinds)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tBINARY\tSOURCE\tSEMVER\tDESCRIPTION")
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", k.Name, yesNo(k.BinaryCompatible), yesNo(k.SourceCompatible),
			bumpColor(k.Semver).Sprint(k.Semver), k.Description)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
