package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modcompat/internal/facts"
)

func field(name, desc string, access facts.Access, ms ...facts.Modifier) facts.FieldSpec {
	return facts.FieldSpec{Name: name, Descriptor: desc, Access: access, Modifiers: facts.Modifiers(ms...)}
}

func TestMemberRemoved_MovedVsRemoved(t *testing.T) {
	m := method("m", facts.Public)
	f := field("f", "I", facts.Public)

	t.Run("still declared by an ancestor", func(t *testing.T) {
		rec := compareClasses(t,
			[]facts.ClassSpec{
				decl("Root", withFields(f), withMethods(m)),
				decl("Mid", extends("p.Root")),
				decl("Leaf", extends("p.Mid"), withFields(f), withMethods(m)),
			},
			[]facts.ClassSpec{
				decl("Root", withFields(f), withMethods(m)),
				decl("Mid", extends("p.Root")),
				decl("Leaf", extends("p.Mid")),
			})
		assert.Equal(t, []string{"FIELD_MOVED_TO_SUPERCLASS", "METHOD_MOVED_TO_SUPERCLASS"}, kindNames(rec))
		assert.Equal(t, "now declared by p.Root", rec.Events[1].Event.Detail)
	})

	t.Run("no ancestor declares it", func(t *testing.T) {
		rec := compareClasses(t,
			[]facts.ClassSpec{
				decl("Root"),
				decl("Leaf", extends("p.Root"), withFields(f), withMethods(m)),
			},
			[]facts.ClassSpec{
				decl("Root"),
				decl("Leaf", extends("p.Root")),
			})
		assert.Equal(t, []string{"FIELD_REMOVED", "METHOD_REMOVED"}, kindNames(rec))
	})

	t.Run("ancestor field of another type", func(t *testing.T) {
		rec := compareClasses(t,
			[]facts.ClassSpec{
				decl("Root", withFields(field("f", "J", facts.Public))),
				decl("Leaf", extends("p.Root"), withFields(f)),
			},
			[]facts.ClassSpec{
				decl("Root", withFields(field("f", "J", facts.Public))),
				decl("Leaf", extends("p.Root")),
			})
		assert.Equal(t, []string{"FIELD_REMOVED"}, kindNames(rec))
	})

	t.Run("private ancestor method", func(t *testing.T) {
		rec := compareClasses(t,
			[]facts.ClassSpec{
				decl("Root", withMethods(method("m", facts.Private))),
				decl("Leaf", extends("p.Root"), withMethods(m)),
			},
			[]facts.ClassSpec{
				decl("Root", withMethods(method("m", facts.Private))),
				decl("Leaf", extends("p.Root")),
			})
		assert.Equal(t, []string{"METHOD_REMOVED"}, kindNames(rec))
	})

	t.Run("constructors are never moved", func(t *testing.T) {
		rec := compareClasses(t,
			[]facts.ClassSpec{
				decl("Root", withMethods(ctor(facts.Public))),
				decl("Leaf", extends("p.Root"), withMethods(ctor(facts.Public))),
			},
			[]facts.ClassSpec{
				decl("Root", withMethods(ctor(facts.Public))),
				decl("Leaf", extends("p.Root")),
			})
		assert.Equal(t, []string{"CONSTRUCTOR_REMOVED"}, kindNames(rec))
	})
}

func TestMemberAccessibilityDirection(t *testing.T) {
	levels := []facts.Access{facts.Private, facts.PackagePrivate, facts.Protected, facts.Public}

	for _, order := range []facts.AccessOrder{facts.StandardOrder, facts.LegacyOrder} {
		e := NewEngine(WithAccessOrder(order))
		pairs := 0
		for _, from := range levels {
			for _, to := range levels {
				t.Run(fmt.Sprintf("%s/%s->%s", order, from, to), func(t *testing.T) {
					x := func(a facts.Access) facts.ClassSpec {
						return decl("X",
							withFields(field("f", "I", a)),
							withMethods(method("m", a)),
							withMethods(ctor(a, "I")))
					}
					rec, err := compareWith(t, e,
						snapshot(t, descriptor(), x(from)),
						snapshot(t, descriptor(), x(to)))
					require.NoError(t, err)

					var want []string
					switch d := order.Compare(to, from); {
					case d > 0:
						want = []string{"FIELD_MORE_ACCESSIBLE", "CONSTRUCTOR_MORE_ACCESSIBLE", "METHOD_MORE_ACCESSIBLE"}
					case d < 0:
						want = []string{"FIELD_LESS_ACCESSIBLE", "CONSTRUCTOR_LESS_ACCESSIBLE", "METHOD_LESS_ACCESSIBLE"}
					default:
						want = []string{}
					}
					assert.Equal(t, want, kindNames(rec))
				})
				if from != to {
					pairs++
				}
			}
		}
		assert.Equal(t, 12, pairs)
	}
}

func TestEnumConstants_RoundTrip(t *testing.T) {
	enum := func(constants ...string) facts.ClassSpec {
		var fields []facts.FieldSpec
		for _, c := range constants {
			fields = append(fields, field(c, "Lp/Color;", facts.Public, facts.Static, facts.Final, facts.Enum))
		}
		return decl("Color", withModifiers(facts.Final, facts.Enum), withFields(fields...))
	}
	v1 := snapshot(t, descriptor(), enum())
	v2 := snapshot(t, descriptor(), enum("A", "B"))
	v3 := snapshot(t, descriptor(), enum())

	added := compare(t, v1, v2)
	require.Equal(t, []string{"ENUM_CONSTANTS_ADDED"}, kindNames(added))
	ev := added.Events[0].Event
	assert.Equal(t, []string{"A", "B"}, ev.Members)
	assert.Equal(t, CategoryEnum, ev.Category())
	_, ok := ev.New.(*facts.EnumFact)
	assert.True(t, ok)

	removed := compare(t, v2, v3)
	require.Equal(t, []string{"ENUM_CONSTANTS_REMOVED"}, kindNames(removed))
	assert.Equal(t, []string{"A", "B"}, removed.Events[0].Event.Members)
	assert.False(t, removed.Events[0].Event.BinaryCompatible())

	assert.Len(t, append(added.Events, removed.Events...), 2, "each transition is reported on its own")
}

func TestEnumConstants_InvalidConstantIsFatal(t *testing.T) {
	bad := decl("Color", withModifiers(facts.Enum),
		withFields(field("A", "Lp/Color;", facts.Public, facts.Enum)))
	_, err := compareWith(t, NewEngine(),
		snapshot(t, descriptor(), bad),
		snapshot(t, descriptor(), bad))
	require.Error(t, err)
}

func TestInterfaceMethods(t *testing.T) {
	iface := func(methods ...facts.MethodSpec) facts.ClassSpec {
		return decl("Service", withModifiers(facts.Interface, facts.Abstract), withMethods(methods...))
	}
	abstract := func(name string) facts.MethodSpec {
		m := method(name, facts.Public)
		m.Modifiers = facts.Modifiers(facts.Abstract)
		return m
	}
	static := func(name string) facts.MethodSpec {
		m := method(name, facts.Public)
		m.Modifiers = facts.Modifiers(facts.Static)
		return m
	}

	rec := compareClasses(t,
		[]facts.ClassSpec{iface(abstract("a"), method("d", facts.Public), static("s"))},
		[]facts.ClassSpec{iface(abstract("a2"), method("d2", facts.Public), static("s2"))})
	assert.Equal(t, []string{
		"METHOD_ABSTRACT_REMOVED_FROM_INTERFACE",
		"METHOD_ABSTRACT_ADDED_TO_INTERFACE",
		"METHOD_DEFAULT_REMOVED_FROM_INTERFACE",
		"METHOD_DEFAULT_ADDED_TO_INTERFACE",
		"METHOD_STATIC_REMOVED_FROM_INTERFACE",
		"METHOD_STATIC_ADDED_TO_INTERFACE",
	}, kindNames(rec))

	adding := rec.OfKind(InterfaceAbstractMethodAdded)[0]
	assert.True(t, adding.BinaryCompatible())
	assert.False(t, adding.SourceCompatible(), "implementors no longer compile")
}

func TestMethodOverloads(t *testing.T) {
	rec := compareClasses(t,
		[]facts.ClassSpec{decl("X", withMethods(method("run", facts.Public), method("helper", facts.Private)))},
		[]facts.ClassSpec{decl("X", withMethods(
			method("run", facts.Public),
			method("run", facts.Public, "I"),
			method("stop", facts.Public),
			method("helper", facts.Private),
			method("helper", facts.Private, "I"),
			method(facts.StaticInitializerName, facts.PackagePrivate),
		))})
	assert.Equal(t, []string{"METHOD_OVERLOAD_ADDED", "METHOD_ADDED"}, kindNames(rec))
	assert.Equal(t, "p.X#run(I)V", rec.Events[0].Event.Subject)
	assert.Equal(t, "p.X#stop()V", rec.Events[1].Event.Subject)
}

func TestConstructorAdded_FirstDeclaration(t *testing.T) {
	rec := compareClasses(t,
		[]facts.ClassSpec{decl("X", withMethods(ctor(facts.Private)))},
		[]facts.ClassSpec{decl("X", withMethods(ctor(facts.Private), ctor(facts.Public, "I")))})
	assert.Equal(t, []string{"CONSTRUCTOR_ADDED"}, kindNames(rec))
}

func TestAddedMember_AncestorLinkageRisk(t *testing.T) {
	root := decl("Root",
		withFields(field("f", "I", facts.Public, facts.Static)),
		withMethods(method("m", facts.Public)))

	rec := compareClasses(t,
		[]facts.ClassSpec{root, decl("Leaf", extends("p.Root"))},
		[]facts.ClassSpec{root, decl("Leaf", extends("p.Root"),
			withFields(field("f", "I", facts.Public)),
			withMethods(method("m", facts.Protected)))})
	assert.Equal(t, []string{
		"FIELD_ADDED",
		"FIELD_STATIC_MISMATCH_WITH_ANCESTOR",
		"METHOD_ADDED",
		"METHOD_LESS_ACCESSIBLE_THAN_ANCESTOR",
	}, kindNames(rec))
}

func TestFieldRules(t *testing.T) {
	tests := []struct {
		name     string
		old, new facts.FieldSpec
		want     []string
	}{
		{"unchanged", field("f", "I", facts.Public), field("f", "I", facts.Public), []string{}},
		{"now final", field("f", "I", facts.Public), field("f", "I", facts.Public, facts.Final), []string{"FIELD_NOW_FINAL"}},
		{"no longer final", field("f", "I", facts.Public, facts.Final), field("f", "I", facts.Public), []string{"FIELD_NO_LONGER_FINAL"}},
		{"now static", field("f", "I", facts.Public), field("f", "I", facts.Public, facts.Static), []string{"FIELD_NOW_STATIC"}},
		{"no longer static", field("f", "I", facts.Public, facts.Static), field("f", "I", facts.Public), []string{"FIELD_NO_LONGER_STATIC"}},
		{"type changed", field("f", "I", facts.Public), field("f", "J", facts.Public), []string{"FIELD_TYPE_CHANGED"}},
		{"transient", field("f", "I", facts.Public), field("f", "I", facts.Public, facts.Transient), []string{"FIELD_TRANSIENT_CHANGED"}},
		{"volatile", field("f", "I", facts.Public, facts.Volatile), field("f", "I", facts.Public), []string{"FIELD_VOLATILE_CHANGED"}},
		{"private changes are invisible", field("f", "I", facts.Private), field("f", "J", facts.Private, facts.Final), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := compareClasses(t,
				[]facts.ClassSpec{decl("X", withFields(tt.old))},
				[]facts.ClassSpec{decl("X", withFields(tt.new))})
			assert.Equal(t, tt.want, kindNames(rec))
		})
	}
}

func TestMethodRules(t *testing.T) {
	with := func(m facts.MethodSpec, ms ...facts.Modifier) facts.MethodSpec {
		m.Modifiers = facts.Modifiers(ms...)
		return m
	}
	throws := func(m facts.MethodSpec, exceptions ...string) facts.MethodSpec {
		m.Exceptions = exceptions
		return m
	}
	run := method("run", facts.Public)
	construct := ctor(facts.Public, "[Ljava/lang/String;")

	tests := []struct {
		name       string
		finalClass bool
		old, new   facts.MethodSpec
		want       []string
	}{
		{"now final", false, run, with(run, facts.Final), []string{"METHOD_NOW_FINAL"}},
		{"no longer final", false, with(run, facts.Final), run, []string{"METHOD_NO_LONGER_FINAL"}},
		{"final inside final class", true, run, with(run, facts.Final), []string{}},
		{"final on private method", false, with(method("run", facts.Private)), with(method("run", facts.Private), facts.Final), []string{}},
		{"now static", false, run, with(run, facts.Static), []string{"METHOD_NOW_STATIC"}},
		{"no longer static", false, with(run, facts.Static), run, []string{"METHOD_NO_LONGER_STATIC"}},
		{"now abstract", false, run, with(run, facts.Abstract), []string{"METHOD_NOW_ABSTRACT"}},
		{"no longer abstract", false, with(run, facts.Abstract), run, []string{"METHOD_NO_LONGER_ABSTRACT"}},
		{"now varargs", false, run, with(run, facts.Varargs), []string{"METHOD_NOW_VARARGS"}},
		{"no longer varargs", false, with(run, facts.Varargs), run, []string{"METHOD_NO_LONGER_VARARGS"}},
		{"synchronized", false, run, with(run, facts.Synchronized), []string{"METHOD_SYNCHRONIZED_CHANGED"}},
		{"exceptions changed", false, throws(run, "java/io/IOException"), throws(run, "java/lang/Exception"), []string{"METHOD_EXCEPTIONS_CHANGED"}},
		{"exceptions reordered", false, throws(run, "a/A", "b/B"), throws(run, "b/B", "a/A"), []string{}},
		{"constructor varargs", false, construct, with(construct, facts.Varargs), []string{"CONSTRUCTOR_NOW_VARARGS"}},
		{"constructor exceptions", false, construct, throws(construct, "java/io/IOException"), []string{"CONSTRUCTOR_EXCEPTIONS_CHANGED"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mods []func(*facts.ClassSpec)
			if tt.finalClass {
				mods = append(mods, withModifiers(facts.Final))
			}
			rec := compareClasses(t,
				[]facts.ClassSpec{decl("X", append(mods, withMethods(tt.old))...)},
				[]facts.ClassSpec{decl("X", append(mods, withMethods(tt.new))...)})
			assert.Equal(t, tt.want, kindNames(rec))
		})
	}
}
