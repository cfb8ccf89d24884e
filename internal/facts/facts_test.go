package facts

import (
	"testing"

	"modcompat/internal/errors"
)

func TestAccessOrder(t *testing.T) {
	levels := []Access{Private, PackagePrivate, Protected, Public}

	for i, a := range levels {
		for j, b := range levels {
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got := StandardOrder.Compare(a, b); got != want {
				t.Errorf("StandardOrder.Compare(%s, %s) = %d, want %d", a, b, got, want)
			}
		}
	}

	if !LegacyOrder.Less(Protected, PackagePrivate) {
		t.Error("legacy order ranks protected below package-private")
	}
	if !StandardOrder.Less(PackagePrivate, Protected) {
		t.Error("standard order ranks package-private below protected")
	}
}

func TestParseAccessAndOrder(t *testing.T) {
	tests := []struct {
		in   string
		want Access
		err  bool
	}{
		{"public", Public, false},
		{"PROTECTED", Protected, false},
		{"package", PackagePrivate, false},
		{"", PackagePrivate, false},
		{"private", Private, false},
		{"friend", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAccess(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseAccess(%q) error = %v, wantErr %v", tt.in, err, tt.err)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAccess(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if o, err := ParseAccessOrder("legacy"); err != nil || o.String() != "legacy" {
		t.Errorf("ParseAccessOrder(legacy) = %v, %v", o, err)
	}
	if _, err := ParseAccessOrder("random"); err == nil {
		t.Error("ParseAccessOrder(random) should fail")
	}
}

func TestModifierSet(t *testing.T) {
	s := Modifiers(Static, Final)
	if !s.Has(Static) || !s.Has(Final) {
		t.Fatalf("set %s should contain static and final", s)
	}
	if s.Has(Abstract) {
		t.Error("set should not contain abstract")
	}

	s2 := s.With(Volatile).Without(Final)
	if !s2.Has(Volatile) || s2.Has(Final) {
		t.Errorf("With/Without produced %s", s2)
	}
	if !s.Has(Final) {
		t.Error("original set must not change")
	}
	if got := s.String(); got != "final static" {
		t.Errorf("String() = %q", got)
	}

	parsed, err := ParseModifiers([]string{"abstract", "Interface"})
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Has(Abstract) || !parsed.Has(Interface) {
		t.Errorf("ParseModifiers = %s", parsed)
	}
	if _, err := ParseModifiers([]string{"native"}); err == nil {
		t.Error("native is not a tracked modifier")
	}
}

func TestMethodFact_Derived(t *testing.T) {
	m := &MethodFact{Name: "<init>", Params: []string{"I", "Ljava/lang/String;"}, Return: "V"}
	if !m.IsInstanceConstructor() || m.IsStaticInitializer() {
		t.Error("<init> should be an instance constructor only")
	}
	if got := m.Descriptor(); got != "(ILjava/lang/String;)V" {
		t.Errorf("Descriptor() = %q", got)
	}

	clinit := &MethodFact{Name: "<clinit>", Return: "V", Modifiers: Modifiers(Static)}
	if !clinit.IsStaticInitializer() {
		t.Error("<clinit> should be a static initializer")
	}

	va := &MethodFact{Name: "of", Params: []string{"[Ljava/lang/Object;"}, Return: "V", Modifiers: Modifiers(Varargs)}
	if !va.IsVariadic() {
		t.Error("varargs flag should make the method variadic")
	}
}

func TestNewConstructorFact(t *testing.T) {
	if _, err := NewConstructorFact(&MethodFact{Name: "<init>", Return: "V"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_, err := NewConstructorFact(&MethodFact{Name: "run", Return: "V"})
	if !errors.HasCode(err, errors.InvariantViolation) {
		t.Errorf("expected InvariantViolation, got %v", err)
	}
	if _, err := NewConstructorFact(nil); err == nil {
		t.Error("nil method should be rejected")
	}
}

func TestNewEnumFact(t *testing.T) {
	constant := Modifiers(Static, Final, Enum)
	c, err := NewClassFact(ClassSpec{
		Name:      ClassName{Module: "m", Package: "p", Name: "Color"},
		Access:    Public,
		Modifiers: Modifiers(Final, Enum),
		Fields: []FieldSpec{
			{Name: "RED", Descriptor: "Lp/Color;", Access: Public, Modifiers: constant},
			{Name: "GREEN", Descriptor: "Lp/Color;", Access: Public, Modifiers: constant},
			{Name: "$VALUES", Descriptor: "[Lp/Color;", Access: Private, Modifiers: Modifiers(Static, Final)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	e, err := NewEnumFact(c)
	if err != nil {
		t.Fatal(err)
	}
	names := e.Names()
	if len(names) != 2 || names[0] != "GREEN" || names[1] != "RED" {
		t.Errorf("Names() = %v", names)
	}

	bad := &FieldFact{Name: "X", Access: Protected, Modifiers: constant}
	if _, err := NewEnumMemberFact(bad); !errors.HasCode(err, errors.InvariantViolation) {
		t.Errorf("expected InvariantViolation for protected enum constant, got %v", err)
	}

	plain := &ClassFact{Name: ClassName{Name: "NotEnum"}}
	if _, err := NewEnumFact(plain); err == nil {
		t.Error("non-enum class should be rejected")
	}
}

func TestNewClassFact_Duplicates(t *testing.T) {
	_, err := NewClassFact(ClassSpec{
		Name:    ClassName{Package: "p", Name: "X"},
		Methods: []MethodSpec{{Name: "a", Return: "V"}, {Name: "a", Return: "V"}},
	})
	if !errors.HasCode(err, errors.InvariantViolation) {
		t.Errorf("duplicate method should be an invariant violation, got %v", err)
	}

	c, err := NewClassFact(ClassSpec{
		Name:    ClassName{Package: "p", Name: "X"},
		Methods: []MethodSpec{{Name: "a", Return: "V"}, {Name: "a", Params: []string{"I"}, Return: "V"}, {Name: "<init>", Return: "V"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.MethodsNamed("a")) != 2 {
		t.Error("overload set of a should have two members")
	}
	if len(c.Constructors()) != 1 {
		t.Error("expected one constructor")
	}
	if _, ok := c.Method("a", "(I)V"); !ok {
		t.Error("Method lookup by descriptor failed")
	}
	if c.Methods[0].Owner != c.Name {
		t.Error("member owner should be the class name")
	}
}

func TestClassFact_Signature(t *testing.T) {
	c := &ClassFact{Name: ClassName{Package: "p", Name: "Box"}, RawSignature: "<T:Ljava/lang/Object;>Ljava/lang/Object;"}
	sig, err := c.Signature()
	if err != nil {
		t.Fatal(err)
	}
	if !sig.IsGeneric() {
		t.Error("Box should be generic")
	}

	none := &ClassFact{Name: ClassName{Name: "Plain"}}
	if sig, err := none.Signature(); sig != nil || err != nil {
		t.Errorf("absent signature should give nil, nil; got %v, %v", sig, err)
	}

	broken := &ClassFact{Name: ClassName{Name: "Broken"}, RawSignature: "<T"}
	if _, err := broken.Signature(); !errors.HasCode(err, errors.ParseError) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestTypeRefAndClassName(t *testing.T) {
	r := ParseTypeRef("java/util/Map$Entry")
	if r.Package != "java.util" || r.Name != "Map$Entry" {
		t.Errorf("ParseTypeRef = %+v", r)
	}
	if ParseTypeRef("Top").Package != "" {
		t.Error("unnamed package expected")
	}
	n := ClassName{Module: "m", Package: "p.q", Name: "X"}
	if n.String() != "m/p.q.X" || n.Ref().Qualified() != "p.q.X" {
		t.Errorf("ClassName formatting: %s / %s", n, n.Ref())
	}
}

func TestModuleDescriptor(t *testing.T) {
	d := NewModuleDescriptor("m").
		Export("a").
		ExportTo("b", "z", "y").
		ExportTo("b", "y", "x").
		Require("java.base", false).
		Provide("s.Svc", "impl.B", "impl.A")

	if got := d.QualifiedExports["b"]; len(got) != 3 || got[0] != "x" || got[2] != "z" {
		t.Errorf("qualified targets = %v", got)
	}
	if got := d.ExportedPackages(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ExportedPackages = %v", got)
	}
	if got := d.PublicPackages(); len(got) != 1 {
		t.Errorf("PublicPackages = %v", got)
	}
	if got := d.Provides["s.Svc"]; got[0] != "impl.A" {
		t.Errorf("providers not sorted: %v", got)
	}
}
