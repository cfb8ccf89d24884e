package report

import (
	"fmt"

	"modcompat/internal/modversion"
)

// Summary aggregates the unsuppressed entries of a report.
type Summary struct {
	TotalChanges       int             `json:"totalChanges"`
	Suppressed         int             `json:"suppressed"`
	BinaryIncompatible int             `json:"binaryIncompatible"`
	SourceIncompatible int             `json:"sourceIncompatible"`
	ByCategory         map[string]int  `json:"byCategory"`
	ByKind             map[string]int  `json:"byKind"`
	ByPackage          map[string]int  `json:"byPackage,omitempty"`
	Required           modversion.Bump `json:"requiredBump"`
}

// Summarize counts entries. Suppressed entries only increment Suppressed.
func Summarize(entries []Entry) *Summary {
	s := &Summary{
		ByCategory: make(map[string]int),
		ByKind:     make(map[string]int),
		ByPackage:  make(map[string]int),
	}
	for _, e := range entries {
		if e.Suppressed {
			s.Suppressed++
			continue
		}
		s.TotalChanges++
		s.ByCategory[e.Category]++
		s.ByKind[e.Kind]++
		if e.Package != "" {
			s.ByPackage[e.Package]++
		}
		if !e.Binary {
			s.BinaryIncompatible++
		}
		if !e.Source {
			s.SourceIncompatible++
		}
	}
	s.Required = RequiredBump(entries)
	return s
}

// RequiredBump is the largest semver impact among unsuppressed entries.
func RequiredBump(entries []Entry) modversion.Bump {
	required := modversion.BumpNone
	for _, e := range entries {
		if e.Suppressed {
			continue
		}
		if b := e.Bump(); b > required {
			required = b
		}
	}
	return required
}

// HasIncompatibleChanges reports whether any unsuppressed entry breaks
// compiled or source consumers.
func (s *Summary) HasIncompatibleChanges() bool {
	return s != nil && (s.BinaryIncompatible > 0 || s.SourceIncompatible > 0)
}

// Verdict compares the version step a release took with the one its changes
// require.
type Verdict struct {
	Old        string          `json:"old"`
	New        string          `json:"new"`
	Performed  modversion.Bump `json:"performed"`
	Required   modversion.Bump `json:"required"`
	Sufficient bool            `json:"sufficient"`
}

// Verdict judges the step from oldVersion to newVersion against s.Required.
func (s *Summary) Verdict(oldVersion, newVersion modversion.Version) Verdict {
	return Verdict{
		Old:        oldVersion.String(),
		New:        newVersion.String(),
		Performed:  modversion.Performed(oldVersion, newVersion),
		Required:   s.Required,
		Sufficient: modversion.Sufficient(oldVersion, newVersion, s.Required),
	}
}

func (v Verdict) String() string {
	if v.Sufficient {
		return fmt.Sprintf("%s -> %s is a %s step; %s required: ok", v.Old, v.New, v.Performed, v.Required)
	}
	return fmt.Sprintf("%s -> %s is a %s step; %s required: insufficient", v.Old, v.New, v.Performed, v.Required)
}
