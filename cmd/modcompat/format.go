package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"modcompat/internal/modversion"
	"modcompat/internal/report"
)

var (
	headerColor = color.New(color.Bold)
	majorColor  = color.New(color.FgRed, color.Bold)
	minorColor  = color.New(color.FgYellow)
	noneColor   = color.New(color.FgGreen)
	dimColor    = color.New(color.Faint)
)

func bumpColor(b modversion.Bump) *color.Color {
	switch b {
	case modversion.BumpMajor:
		return majorColor
	case modversion.BumpMinor:
		return minorColor
	default:
		return noneColor
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeReportHuman renders r grouped by semver impact, most severe first.
func writeReportHuman(w io.Writer, r *report.Report, showSuppressed bool) {
	var sb strings.Builder

	title := r.Module
	if r.Old != "" || r.New != "" {
		title += fmt.Sprintf(" %s → %s", orUnknown(r.Old), orUnknown(r.New))
	}
	sb.WriteString(headerColor.Sprint(title) + "\n")
	sb.WriteString(strings.Repeat("━", len([]rune(title))) + "\n\n")

	groups := map[modversion.Bump][]report.Entry{}
	var suppressed []report.Entry
	for _, e := range r.Entries {
		if e.Suppressed {
			suppressed = append(suppressed, e)
			continue
		}
		groups[e.Bump()] = append(groups[e.Bump()], e)
	}

	if r.Summary.TotalChanges == 0 {
		sb.WriteString("No API changes detected.\n")
	}
	sections := []struct {
		bump  modversion.Bump
		title string
		mark  string
	}{
		{modversion.BumpMajor, "Breaking changes", "✗"},
		{modversion.BumpMinor, "Additions", "+"},
		{modversion.BumpNone, "Compatible changes", "·"},
	}
	for _, sec := range sections {
		entries := groups[sec.bump]
		if len(entries) == 0 {
			continue
		}
		c := bumpColor(sec.bump)
		sb.WriteString(c.Sprintf("%s (%d):", sec.title, len(entries)) + "\n")
		for _, e := range entries {
			writeEntry(&sb, c.Sprint(sec.mark), e)
		}
		sb.WriteString("\n")
	}

	if showSuppressed && len(suppressed) > 0 {
		sb.WriteString(dimColor.Sprintf("Suppressed (%d):", len(suppressed)) + "\n")
		for _, e := range suppressed {
			writeEntry(&sb, dimColor.Sprint("-"), e)
		}
		sb.WriteString("\n")
	}

	writeSummary(&sb, r)
	_, _ = io.WriteString(w, sb.String())
}

func writeEntry(sb *strings.Builder, mark string, e report.Entry) {
	sb.WriteString(fmt.Sprintf("  %s [%s] %s\n", mark, e.Kind, e.Subject))
	if e.Old != "" && e.New != "" {
		sb.WriteString(fmt.Sprintf("    Before: %s\n", e.Old))
		sb.WriteString(fmt.Sprintf("    After:  %s\n", e.New))
	}
	if len(e.Members) > 0 {
		sb.WriteString(fmt.Sprintf("    Members: %s\n", strings.Join(e.Members, ", ")))
	}
	if e.Detail != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", e.Detail))
	}
}

func writeSummary(sb *strings.Builder, r *report.Report) {
	s := r.Summary
	sb.WriteString(headerColor.Sprint("Summary:") + "\n")
	sb.WriteString(fmt.Sprintf("  Changes:              %d", s.TotalChanges))
	if s.Suppressed > 0 {
		sb.WriteString(fmt.Sprintf(" (%d suppressed)", s.Suppressed))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Binary incompatible:  %d\n", s.BinaryIncompatible))
	sb.WriteString(fmt.Sprintf("  Source incompatible:  %d\n", s.SourceIncompatible))
	if len(s.ByCategory) > 0 {
		cats := make([]string, 0, len(s.ByCategory))
		for c, n := range s.ByCategory {
			cats = append(cats, fmt.Sprintf("%s=%d", strings.ToLower(c), n))
		}
		sort.Strings(cats)
		sb.WriteString(fmt.Sprintf("  By category:          %s\n", strings.Join(cats, " ")))
	}
	sb.WriteString(fmt.Sprintf("  Required bump:        %s\n", bumpColor(s.Required).Sprint(s.Required)))
	if v := r.Verdict; v != nil {
		if v.Sufficient {
			sb.WriteString(fmt.Sprintf("  Verdict:              %s\n", noneColor.Sprint(v.String())))
		} else {
			sb.WriteString(fmt.Sprintf("  Verdict:              %s\n", majorColor.Sprint(v.String())))
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
