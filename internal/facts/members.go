package facts

import (
	"sort"
	"strings"

	"modcompat/internal/errors"
)

const (
	ConstructorName       = "<init>"
	StaticInitializerName = "<clinit>"
)

// FieldFact describes a declared field.
type FieldFact struct {
	Owner      ClassName
	Name       string
	Descriptor string
	Modifiers  ModifierSet
	Access     Access
}

func (f *FieldFact) String() string {
	return f.Owner.Qualified() + "." + f.Name + ":" + f.Descriptor
}

func (f *FieldFact) IsStatic() bool { return f.Modifiers.Has(Static) }
func (f *FieldFact) IsFinal() bool  { return f.Modifiers.Has(Final) }

// IsEnumConstant reports whether the field carries the ENUM flag.
func (f *FieldFact) IsEnumConstant() bool { return f.Modifiers.Has(Enum) }

// MethodFact describes a declared method, constructor or static initializer.
type MethodFact struct {
	Owner      ClassName
	Name       string
	Params     []string
	Return     string
	Exceptions []string
	Modifiers  ModifierSet
	Access     Access
}

// Descriptor returns (params)return.
func (m *MethodFact) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range m.Params {
		b.WriteString(p)
	}
	b.WriteByte(')')
	b.WriteString(m.Return)
	return b.String()
}

func (m *MethodFact) String() string {
	return m.Owner.Qualified() + "#" + m.Name + m.Descriptor()
}

func (m *MethodFact) IsInstanceConstructor() bool { return m.Name == ConstructorName }
func (m *MethodFact) IsStaticInitializer() bool   { return m.Name == StaticInitializerName }
func (m *MethodFact) IsVariadic() bool            { return m.Modifiers.Has(Varargs) }
func (m *MethodFact) IsStatic() bool              { return m.Modifiers.Has(Static) }
func (m *MethodFact) IsFinal() bool               { return m.Modifiers.Has(Final) }
func (m *MethodFact) IsAbstract() bool            { return m.Modifiers.Has(Abstract) }

// IsDefault reports whether m is a default method, given that its owner is
// an interface: a non-abstract, non-static instance method.
func (m *MethodFact) IsDefault() bool {
	return !m.IsAbstract() && !m.IsStatic() && !m.IsInstanceConstructor() && !m.IsStaticInitializer()
}

// SortedExceptions returns the declared exceptions in sorted order.
func (m *MethodFact) SortedExceptions() []string {
	out := append([]string(nil), m.Exceptions...)
	sort.Strings(out)
	return out
}

// ConstructorFact is a MethodFact known to be an instance constructor.
type ConstructorFact struct {
	Method *MethodFact
}

// NewConstructorFact wraps m, which must be named <init>.
func NewConstructorFact(m *MethodFact) (*ConstructorFact, error) {
	if m == nil || !m.IsInstanceConstructor() {
		name := "<nil>"
		if m != nil {
			name = m.String()
		}
		return nil, errors.Newf(errors.InvariantViolation, "%s is not an instance constructor", name)
	}
	return &ConstructorFact{Method: m}, nil
}

func (c *ConstructorFact) String() string { return c.Method.String() }

// Descriptor returns the constructor's method descriptor.
func (c *ConstructorFact) Descriptor() string { return c.Method.Descriptor() }

// EnumMemberFact is an enum constant.
type EnumMemberFact struct {
	Field *FieldFact
}

// NewEnumMemberFact wraps f, which must be public static final enum.
func NewEnumMemberFact(f *FieldFact) (*EnumMemberFact, error) {
	if f == nil {
		return nil, errors.Newf(errors.InvariantViolation, "enum constant field is nil")
	}
	if f.Access != Public || !f.Modifiers.Has(Static) || !f.Modifiers.Has(Final) || !f.Modifiers.Has(Enum) {
		return nil, errors.Newf(errors.InvariantViolation,
			"%s is not an enum constant: access=%s modifiers=[%s]", f, f.Access, f.Modifiers)
	}
	return &EnumMemberFact{Field: f}, nil
}

func (e *EnumMemberFact) Name() string { return e.Field.Name }

// EnumFact is an enum class with its constants.
type EnumFact struct {
	Class   *ClassFact
	Members map[string]*EnumMemberFact
}

// NewEnumFact collects the ENUM-flagged fields of c. c must be an enum class.
func NewEnumFact(c *ClassFact) (*EnumFact, error) {
	if c == nil || !c.IsEnum() {
		name := "<nil>"
		if c != nil {
			name = c.Name.Qualified()
		}
		return nil, errors.Newf(errors.InvariantViolation, "%s is not an enum", name)
	}
	e := &EnumFact{Class: c, Members: make(map[string]*EnumMemberFact)}
	for _, f := range c.Fields {
		if !f.IsEnumConstant() {
			continue
		}
		m, err := NewEnumMemberFact(f)
		if err != nil {
			return nil, err
		}
		e.Members[f.Name] = m
	}
	return e, nil
}

func (e *EnumFact) String() string { return e.Class.Name.Qualified() }

// Names returns the constant names in sorted order.
func (e *EnumFact) Names() []string {
	names := make([]string, 0, len(e.Members))
	for n := range e.Members {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
