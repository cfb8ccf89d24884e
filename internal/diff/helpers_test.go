package diff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modcompat/internal/facts"
	"modcompat/internal/registry"
)

func decl(name string, mutate ...func(*facts.ClassSpec)) facts.ClassSpec {
	s := facts.ClassSpec{
		Name:            facts.ClassName{Module: "m", Package: "p", Name: name},
		Access:          facts.Public,
		BytecodeVersion: 61,
	}
	for _, fn := range mutate {
		fn(&s)
	}
	return s
}

func extends(super string) func(*facts.ClassSpec) {
	return func(s *facts.ClassSpec) {
		r := facts.ParseTypeRef(super)
		s.Superclass = &r
	}
}

func withFields(fields ...facts.FieldSpec) func(*facts.ClassSpec) {
	return func(s *facts.ClassSpec) { s.Fields = append(s.Fields, fields...) }
}

func withMethods(methods ...facts.MethodSpec) func(*facts.ClassSpec) {
	return func(s *facts.ClassSpec) { s.Methods = append(s.Methods, methods...) }
}

func withModifiers(ms ...facts.Modifier) func(*facts.ClassSpec) {
	return func(s *facts.ClassSpec) { s.Modifiers = facts.Modifiers(ms...) }
}

func method(name string, access facts.Access, params ...string) facts.MethodSpec {
	return facts.MethodSpec{Name: name, Params: params, Return: "V", Access: access}
}

func ctor(access facts.Access, params ...string) facts.MethodSpec {
	return method(facts.ConstructorName, access, params...)
}

func build(t *testing.T, specs ...facts.ClassSpec) []*facts.ClassFact {
	t.Helper()
	out := make([]*facts.ClassFact, len(specs))
	for i, s := range specs {
		c, err := facts.NewClassFact(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func descriptor() *facts.ModuleDescriptor {
	return facts.NewModuleDescriptor("m").Export("p")
}

func snapshot(t *testing.T, d *facts.ModuleDescriptor, specs ...facts.ClassSpec) registry.ModuleSnapshot {
	t.Helper()
	s, err := registry.NewMemorySnapshot(d, build(t, specs...)...)
	require.NoError(t, err)
	return s
}

func compareWith(t *testing.T, e *Engine, old, new registry.ModuleSnapshot) (*Recorder, error) {
	t.Helper()
	oldReg, err := registry.New([]registry.ModuleSnapshot{old})
	require.NoError(t, err)
	newReg, err := registry.New([]registry.ModuleSnapshot{new})
	require.NoError(t, err)
	rec := &Recorder{}
	return rec, e.CompareModules(rec, oldReg, newReg, old, new)
}

func compare(t *testing.T, old, new registry.ModuleSnapshot) *Recorder {
	t.Helper()
	rec, err := compareWith(t, NewEngine(), old, new)
	require.NoError(t, err)
	return rec
}

// compareClasses diffs two versions of the same single-package module.
func compareClasses(t *testing.T, old, new []facts.ClassSpec) *Recorder {
	t.Helper()
	return compare(t, snapshot(t, descriptor(), old...), snapshot(t, descriptor(), new...))
}

func kindNames(rec *Recorder) []string {
	out := []string{}
	for _, e := range rec.Events {
		out = append(out, e.Event.Kind.Name)
	}
	return out
}
