package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modcompat/internal/diff"
	cerrors "modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/loader"
	"modcompat/internal/modversion"
	"modcompat/internal/registry"
)

func event(k *diff.Kind, pkg, class, subject string) diff.Event {
	ev := diff.Event{Kind: k, Module: "m", Subject: subject}
	if class != "" {
		ev.Class = facts.ClassName{Module: "m", Package: pkg, Name: class}
	}
	return ev
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(nil, event(diff.ClassNowFinal, "p", "X", "p.X"))
	assert.Equal(t, "CLASS_NOW_FINAL", e.Kind)
	assert.Equal(t, "CLASS", e.Category)
	assert.Equal(t, "p", e.Package)
	assert.Equal(t, "p.X", e.Class)
	assert.False(t, e.Binary)
	assert.False(t, e.Source)
	assert.Equal(t, "major", e.Semver)
	assert.Equal(t, modversion.BumpMajor, e.Bump())

	e = NewEntry(nil, event(diff.ExportAdded, "", "", "com.example.spi"))
	assert.Equal(t, "com.example.spi", e.Package, "export events count against their package")
	assert.Empty(t, e.Class)

	e = NewEntry(nil, event(diff.RequiresAdded, "", "", "java.sql"))
	assert.Empty(t, e.Package)
}

func TestSummarize(t *testing.T) {
	c := NewCollector(nil)
	c.OnChange(nil, event(diff.ClassAdded, "p", "A", "p.A"))
	c.OnChange(nil, event(diff.ClassNowFinal, "p", "B", "p.B"))
	c.OnChange(nil, event(diff.BytecodeVersionRaised, "q", "C", "q.C"))
	c.OnChange(nil, event(diff.ExportAdded, "", "", "r"))

	s := Summarize(c.Entries())
	assert.Equal(t, 4, s.TotalChanges)
	assert.Equal(t, 0, s.Suppressed)
	assert.Equal(t, 2, s.BinaryIncompatible)
	assert.Equal(t, 1, s.SourceIncompatible)
	assert.Equal(t, map[string]int{"CLASS": 3, "MODULE": 1}, s.ByCategory)
	assert.Equal(t, 1, s.ByKind["CLASS_NOW_FINAL"])
	assert.Equal(t, map[string]int{"p": 2, "q": 1, "r": 1}, s.ByPackage)
	assert.Equal(t, modversion.BumpMajor, s.Required)
	assert.True(t, s.HasIncompatibleChanges())
}

func TestRequiredBump(t *testing.T) {
	tests := []struct {
		name  string
		kinds []*diff.Kind
		want  modversion.Bump
	}{
		{"nothing", nil, modversion.BumpNone},
		{"patch only", []*diff.Kind{diff.RequiresRemoved}, modversion.BumpNone},
		{"additions", []*diff.Kind{diff.ClassAdded, diff.RequiresRemoved}, modversion.BumpMinor},
		{"break wins", []*diff.Kind{diff.ClassAdded, diff.ClassRemoved}, modversion.BumpMajor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Entry
			for _, k := range tt.kinds {
				entries = append(entries, NewEntry(nil, event(k, "p", "X", "p.X")))
			}
			assert.Equal(t, tt.want, RequiredBump(entries))
		})
	}
}

func TestVerdict(t *testing.T) {
	s := &Summary{Required: modversion.BumpMajor}

	v := s.Verdict(modversion.MustParse("1.2.0"), modversion.MustParse("1.3.0"))
	assert.Equal(t, modversion.BumpMinor, v.Performed)
	assert.False(t, v.Sufficient)
	assert.Contains(t, v.String(), "insufficient")

	v = s.Verdict(modversion.MustParse("1.2.0"), modversion.MustParse("2.0.0"))
	assert.True(t, v.Sufficient)

	v = s.Verdict(modversion.MustParse("0.2"), modversion.MustParse("0.3"))
	assert.True(t, v.Sufficient, "pre-1.0 minor steps may break")
}

func TestSuppressions(t *testing.T) {
	s, err := ParseSuppressions(`
[[accept]]
kind = "CLASS_REMOVED"
subject = "com.example.internal.*"
reason = "never exported to users"

[[accept]]
kind = "*"
subject = "com.example.legacy.Old*"

[[accept]]
kind = "MODULE_REQUIRES_ADDED"
`)
	require.NoError(t, err)

	tests := []struct {
		kind    *diff.Kind
		subject string
		want    bool
	}{
		{diff.ClassRemoved, "com.example.internal.Impl", true},
		{diff.ClassRemoved, "com.example.api.Widget", false},
		{diff.ClassNowFinal, "com.example.internal.Impl", false},
		{diff.ClassNowFinal, "com.example.legacy.OldThing", true},
		{diff.RequiresAdded, "java.sql", true},
		{diff.RequiresRemoved, "java.sql", false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Name+" "+tt.subject, func(t *testing.T) {
			e := NewEntry(nil, diff.Event{Kind: tt.kind, Module: "m", Subject: tt.subject})
			assert.Equal(t, tt.want, s.Match(e))
		})
	}
	assert.Empty(t, s.Unused())

	var none *Suppressions
	assert.False(t, none.Match(Entry{Kind: "CLASS_REMOVED"}))
	assert.Nil(t, none.Unused())
}

func TestSuppressions_Excluded(t *testing.T) {
	s, err := ParseSuppressions("[[accept]]\nkind = \"CLASS_REMOVED\"\nsubject = \"p.Gone\"\n\n[[accept]]\nkind = \"CLASS_ADDED\"\nsubject = \"never.*\"\n")
	require.NoError(t, err)

	c := NewCollector(s)
	c.OnChange(nil, event(diff.ClassRemoved, "p", "Gone", "p.Gone"))
	c.OnChange(nil, event(diff.ClassAdded, "p", "New", "p.New"))

	r := c.Build("m", modversion.MustParse("1.0"), modversion.MustParse("1.1"))
	require.Len(t, r.Entries, 2)
	assert.True(t, r.Entries[0].Suppressed)
	assert.Equal(t, 1, r.Summary.TotalChanges)
	assert.Equal(t, 1, r.Summary.Suppressed)
	assert.Equal(t, modversion.BumpMinor, r.Summary.Required)
	require.NotNil(t, r.Verdict)
	assert.True(t, r.Verdict.Sufficient)

	unused := s.Unused()
	require.Len(t, unused, 1)
	assert.Equal(t, "never.*", unused[0].Subject)
}

func TestLoadSuppressions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[[accept]]\nkind = \"CLASS_ADDED\"\nwhy = \"x\"\n"},
		{"unknown kind", "[[accept]]\nkind = \"CLASS_VANISHED\"\n"},
		{"missing kind", "[[accept]]\nsubject = \"p.*\"\n"},
		{"bad pattern", "[[accept]]\nkind = \"*\"\nsubject = \"p.[\"\n"},
		{"not toml", "[[accept]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "suppressions.toml")
			require.NoError(t, os.WriteFile(file, []byte(tt.body), 0o644))
			_, err := LoadSuppressions(file)
			require.Error(t, err)
			assert.True(t, cerrors.HasCode(err, cerrors.ConfigInvalid), "got %v", err)
		})
	}

	_, err := LoadSuppressions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, cerrors.HasCode(err, cerrors.ConfigInvalid))
}

func TestReport_FromManifests(t *testing.T) {
	testdata := filepath.Join("..", "loader", "testdata")
	platform, err := loader.OpenPlatform("java.base", []string{testdata})
	require.NoError(t, err)
	v1, err := loader.Open(filepath.Join(testdata, "lib-1.0.0.toml"))
	require.NoError(t, err)
	v2, err := loader.Open(filepath.Join(testdata, "lib-2.0.0.yaml"))
	require.NoError(t, err)
	oldReg, err := registry.New([]registry.ModuleSnapshot{v1, platform})
	require.NoError(t, err)
	newReg, err := registry.New([]registry.ModuleSnapshot{v2, platform})
	require.NoError(t, err)

	c := NewCollector(nil)
	require.NoError(t, diff.NewEngine().CompareModules(c, oldReg, newReg, v1, v2))
	r := c.Build(v2.Descriptor().Name, v1.Descriptor().Version, v2.Descriptor().Version)

	assert.Equal(t, 6, r.Summary.TotalChanges)
	assert.Equal(t, modversion.BumpMajor, r.Summary.Required)
	require.NotNil(t, r.Verdict)
	assert.True(t, r.Verdict.Sufficient)
	assert.Equal(t, "1.0.0", r.Old)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, "major", summary["requiredBump"])
	assert.Equal(t, "major", decoded["verdict"].(map[string]any)["performed"])
}

func TestNew_Versions(t *testing.T) {
	r := New("m", modversion.Version{}, modversion.MustParse("2.0"), nil)
	assert.NotNil(t, r.Entries, "entries encode as [] rather than null")
	assert.Empty(t, r.Old)
	assert.Equal(t, "2.0", r.New)
	assert.Nil(t, r.Verdict, "no verdict without both versions")

	r = New("m", modversion.MustParse("1.4.2"), modversion.MustParse("1.5.0"), []Entry{
		{Kind: "METHOD_ADDED", Subject: "p.A#m()V", Semver: "minor", Binary: true, Source: true},
	})
	require.NotNil(t, r.Verdict)
	assert.Equal(t, modversion.BumpMinor, r.Verdict.Performed)
	assert.True(t, r.Verdict.Sufficient)
}
