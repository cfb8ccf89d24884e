// Package facts holds the immutable records the loader produces for one
// module snapshot: classes, fields, methods, constructors, enums and module
// descriptors.
package facts

import (
	"strings"
	"sync"

	"modcompat/internal/errors"
	"modcompat/internal/signature"
)

// ClassName identifies a class within a snapshot.
type ClassName struct {
	Module  string
	Package string // dotted, empty for the unnamed package
	Name    string // binary simple name, e.g. Outer$Inner
}

// Qualified returns package.Name.
func (n ClassName) Qualified() string {
	if n.Package == "" {
		return n.Name
	}
	return n.Package + "." + n.Name
}

func (n ClassName) String() string {
	if n.Module == "" {
		return n.Qualified()
	}
	return n.Module + "/" + n.Qualified()
}

// Ref drops the module.
func (n ClassName) Ref() TypeRef { return TypeRef{Package: n.Package, Name: n.Name} }

// TypeRef names a class without its module; the registry finds the module.
type TypeRef struct {
	Package string
	Name    string
}

// ParseTypeRef accepts dotted (java.lang.Object) or internal
// (java/lang/Object) qualified names.
func ParseTypeRef(qualified string) TypeRef {
	q := strings.ReplaceAll(qualified, "/", ".")
	i := strings.LastIndexByte(q, '.')
	if i < 0 {
		return TypeRef{Name: q}
	}
	return TypeRef{Package: q[:i], Name: q[i+1:]}
}

func (r TypeRef) Qualified() string {
	if r.Package == "" {
		return r.Name
	}
	return r.Package + "." + r.Name
}

func (r TypeRef) String() string { return r.Qualified() }

// ClassFact describes one class file.
type ClassFact struct {
	Name            ClassName
	Modifiers       ModifierSet
	Access          Access
	BytecodeVersion uint16
	Superclass      *TypeRef
	Interfaces      []TypeRef
	Fields          []*FieldFact
	Methods         []*MethodFact
	// RawSignature is the unparsed Signature attribute, empty when absent.
	RawSignature string
	// Raw is the loader's own record for this class.
	Raw any

	sigOnce sync.Once
	sig     *signature.ClassSignature
	sigErr  error
}

// ClassSpec carries the decoded attributes used by NewClassFact.
type ClassSpec struct {
	Name            ClassName
	Modifiers       ModifierSet
	Access          Access
	BytecodeVersion uint16
	Superclass      *TypeRef
	Interfaces      []TypeRef
	RawSignature    string
	Raw             any
	Fields          []FieldSpec
	Methods         []MethodSpec
}

// FieldSpec carries the decoded attributes of a field.
type FieldSpec struct {
	Name       string
	Descriptor string
	Modifiers  ModifierSet
	Access     Access
}

// MethodSpec carries the decoded attributes of a method.
type MethodSpec struct {
	Name       string
	Params     []string
	Return     string
	Exceptions []string
	Modifiers  ModifierSet
	Access     Access
}

// NewClassFact builds a class and its members. Member owners are set to
// spec.Name.
func NewClassFact(spec ClassSpec) (*ClassFact, error) {
	if spec.Name.Name == "" {
		return nil, errors.Newf(errors.InvariantViolation, "class in package %q has no name", spec.Name.Package)
	}
	c := &ClassFact{
		Name:            spec.Name,
		Modifiers:       spec.Modifiers,
		Access:          spec.Access,
		BytecodeVersion: spec.BytecodeVersion,
		Superclass:      spec.Superclass,
		Interfaces:      append([]TypeRef(nil), spec.Interfaces...),
		RawSignature:    spec.RawSignature,
		Raw:             spec.Raw,
	}
	seenFields := make(map[string]bool, len(spec.Fields))
	for _, f := range spec.Fields {
		if seenFields[f.Name] {
			return nil, errors.Newf(errors.InvariantViolation, "%s declares field %s twice", spec.Name.Qualified(), f.Name)
		}
		seenFields[f.Name] = true
		c.Fields = append(c.Fields, &FieldFact{
			Owner:      spec.Name,
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Modifiers:  f.Modifiers,
			Access:     f.Access,
		})
	}
	seenMethods := make(map[string]bool, len(spec.Methods))
	for _, m := range spec.Methods {
		mf := &MethodFact{
			Owner:      spec.Name,
			Name:       m.Name,
			Params:     append([]string(nil), m.Params...),
			Return:     m.Return,
			Exceptions: append([]string(nil), m.Exceptions...),
			Modifiers:  m.Modifiers,
			Access:     m.Access,
		}
		key := mf.Name + mf.Descriptor()
		if seenMethods[key] {
			return nil, errors.Newf(errors.InvariantViolation, "%s declares method %s twice", spec.Name.Qualified(), key)
		}
		seenMethods[key] = true
		c.Methods = append(c.Methods, mf)
	}
	return c, nil
}

func (c *ClassFact) String() string { return c.Name.Qualified() }

// IsPublic reports whether consumers outside the package can see the class.
func (c *ClassFact) IsPublic() bool { return c.Access == Public }

func (c *ClassFact) IsInterface() bool { return c.Modifiers.Has(Interface) }
func (c *ClassFact) IsEnum() bool      { return c.Modifiers.Has(Enum) }
func (c *ClassFact) IsFinal() bool     { return c.Modifiers.Has(Final) }
func (c *ClassFact) IsAbstract() bool  { return c.Modifiers.Has(Abstract) }

// Signature parses RawSignature on first use. It returns nil, nil when the
// class has no Signature attribute.
func (c *ClassFact) Signature() (*signature.ClassSignature, error) {
	if c.RawSignature == "" {
		return nil, nil
	}
	c.sigOnce.Do(func() {
		c.sig, c.sigErr = signature.ParseClass(c.RawSignature)
		if c.sigErr != nil {
			c.sigErr = errors.New(errors.ParseError, "class "+c.Name.Qualified(), c.sigErr)
		}
	})
	return c.sig, c.sigErr
}

// Field returns the field named name.
func (c *ClassFact) Field(name string) (*FieldFact, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Method returns the method with the given name and descriptor.
func (c *ClassFact) Method(name, descriptor string) (*MethodFact, bool) {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor() == descriptor {
			return m, true
		}
	}
	return nil, false
}

// MethodsNamed returns the overload set for name in declaration order.
func (c *ClassFact) MethodsNamed(name string) []*MethodFact {
	var out []*MethodFact
	for _, m := range c.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// Constructors returns the instance constructors.
func (c *ClassFact) Constructors() []*ConstructorFact {
	var out []*ConstructorFact
	for _, m := range c.Methods {
		if m.IsInstanceConstructor() {
			out = append(out, &ConstructorFact{Method: m})
		}
	}
	return out
}
