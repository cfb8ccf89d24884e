// Package report turns diff events into flat records, summaries and a
// versioning verdict.
package report

import (
	"fmt"
	"strings"

	"modcompat/internal/diff"
	"modcompat/internal/modversion"
)

// Entry is the serializable form of one diff event.
type Entry struct {
	Kind       string   `json:"kind" msgpack:"kind"`
	Category   string   `json:"category" msgpack:"category"`
	Check      string   `json:"check" msgpack:"check"`
	Module     string   `json:"module" msgpack:"module"`
	Package    string   `json:"package,omitempty" msgpack:"package,omitempty"`
	Class      string   `json:"class,omitempty" msgpack:"class,omitempty"`
	Subject    string   `json:"subject" msgpack:"subject"`
	Old        string   `json:"old,omitempty" msgpack:"old,omitempty"`
	New        string   `json:"new,omitempty" msgpack:"new,omitempty"`
	Members    []string `json:"members,omitempty" msgpack:"members,omitempty"`
	Detail     string   `json:"detail,omitempty" msgpack:"detail,omitempty"`
	Binary     bool     `json:"binaryCompatible" msgpack:"binary"`
	Source     bool     `json:"sourceCompatible" msgpack:"source"`
	Semver     string   `json:"semver" msgpack:"semver"`
	Suppressed bool     `json:"suppressed,omitempty" msgpack:"suppressed,omitempty"`
}

// NewEntry flattens ev.
func NewEntry(check diff.Check, ev diff.Event) Entry {
	e := Entry{
		Kind:     ev.Kind.Name,
		Category: string(ev.Category()),
		Module:   ev.Module,
		Package:  ev.Class.Package,
		Class:    ev.Class.Qualified(),
		Subject:  ev.Subject,
		Old:      str(ev.Old),
		New:      str(ev.New),
		Members:  ev.Members,
		Detail:   ev.Detail,
		Binary:   ev.BinaryCompatible(),
		Source:   ev.SourceCompatible(),
		Semver:   ev.Semver().String(),
	}
	if check != nil {
		e.Check = check.Name()
	}
	if ev.Class.Name == "" {
		e.Class = ""
		e.Package = packageSubject(ev)
	}
	return e
}

// Bump returns the entry's semver impact.
func (e Entry) Bump() modversion.Bump {
	b, err := modversion.ParseBump(e.Semver)
	if err != nil {
		return modversion.BumpMajor
	}
	return b
}

func (e Entry) String() string {
	s := e.Kind + " " + e.Subject
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

func str(s fmt.Stringer) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// packageSubject returns the package named by an export or open event.
func packageSubject(ev diff.Event) string {
	if strings.Contains(ev.Kind.Name, "_EXPORT") || strings.Contains(ev.Kind.Name, "_OPEN") {
		return ev.Subject
	}
	return ""
}

// Collector is a diff.Receiver accumulating entries. Entries matching a
// suppression are kept but flagged.
type Collector struct {
	suppressions *Suppressions
	entries      []Entry
}

// NewCollector returns a collector applying s, which may be nil.
func NewCollector(s *Suppressions) *Collector {
	return &Collector{suppressions: s}
}

func (c *Collector) OnChange(check diff.Check, ev diff.Event) {
	e := NewEntry(check, ev)
	e.Suppressed = c.suppressions.Match(e)
	c.entries = append(c.entries, e)
}

// Entries returns everything collected, suppressed entries included.
func (c *Collector) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Report is the outcome of comparing one module pair.
type Report struct {
	Module     string             `json:"module"`
	OldVersion modversion.Version `json:"-"`
	NewVersion modversion.Version `json:"-"`
	Old        string             `json:"oldVersion,omitempty"`
	New        string             `json:"newVersion,omitempty"`
	Entries    []Entry            `json:"entries"`
	Summary    *Summary           `json:"summary"`
	Verdict    *Verdict           `json:"verdict,omitempty"`
}

// Build assembles the report for module from the collected entries.
func (c *Collector) Build(module string, oldVersion, newVersion modversion.Version) *Report {
	return New(module, oldVersion, newVersion, c.Entries())
}

// New summarizes entries for module. The verdict is only computed when both
// versions are known.
func New(module string, oldVersion, newVersion modversion.Version, entries []Entry) *Report {
	r := &Report{
		Module:     module,
		OldVersion: oldVersion,
		NewVersion: newVersion,
		Entries:    entries,
	}
	if r.Entries == nil {
		r.Entries = []Entry{}
	}
	r.Summary = Summarize(r.Entries)
	if !oldVersion.IsZero() {
		r.Old = oldVersion.String()
	}
	if !newVersion.IsZero() {
		r.New = newVersion.String()
	}
	if !oldVersion.IsZero() && !newVersion.IsZero() {
		v := r.Summary.Verdict(oldVersion, newVersion)
		r.Verdict = &v
	}
	return r
}
