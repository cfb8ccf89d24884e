// Package signature parses JVM generic signatures into a typed tree and
// decides whether two type-parameter lists are equal up to renaming.
package signature

import "strings"

// TypeSignature is one of *ClassType, *ArrayType, *TypeVariable or BaseType.
type TypeSignature interface {
	String() string
	isTypeSignature()
}

// BaseType is a primitive descriptor character. It appears only as an array
// element or in a method signature.
type BaseType byte

const (
	Byte    BaseType = 'B'
	Char    BaseType = 'C'
	Double  BaseType = 'D'
	Float   BaseType = 'F'
	Int     BaseType = 'I'
	Long    BaseType = 'J'
	Short   BaseType = 'S'
	Boolean BaseType = 'Z'
	// Void is only valid as a method result.
	Void BaseType = 'V'
)

func (b BaseType) String() string { return string(rune(b)) }
func (BaseType) isTypeSignature() {}

func isBaseType(c byte) bool {
	switch BaseType(c) {
	case Byte, Char, Double, Float, Int, Long, Short, Boolean:
		return true
	}
	return false
}

// TypeVariable is a reference to a type parameter, "TName;".
type TypeVariable struct {
	Name string
}

func (v *TypeVariable) String() string { return "T" + v.Name + ";" }
func (*TypeVariable) isTypeSignature() {}

// ArrayType is Dims levels of array around Elem. Elem is never an ArrayType.
type ArrayType struct {
	Dims int
	Elem TypeSignature
}

func (a *ArrayType) String() string {
	return strings.Repeat("[", a.Dims) + a.Elem.String()
}
func (*ArrayType) isTypeSignature() {}

// SimpleClassType is one segment of an Outer<T>.Inner<U> chain.
type SimpleClassType struct {
	Name string
	Args []TypeArgument
}

func (s SimpleClassType) write(b *strings.Builder) {
	b.WriteString(s.Name)
	if len(s.Args) == 0 {
		return
	}
	b.WriteByte('<')
	for _, a := range s.Args {
		b.WriteString(a.String())
	}
	b.WriteByte('>')
}

// ClassType is "L" pkg/Outer<..>.Inner<..> ";". Package uses slashes and is
// empty for the unnamed package.
type ClassType struct {
	Package  string
	Segments []SimpleClassType
}

func (c *ClassType) String() string {
	var b strings.Builder
	b.WriteByte('L')
	if c.Package != "" {
		b.WriteString(c.Package)
		b.WriteByte('/')
	}
	for i, s := range c.Segments {
		if i > 0 {
			b.WriteByte('.')
		}
		s.write(&b)
	}
	b.WriteByte(';')
	return b.String()
}
func (*ClassType) isTypeSignature() {}

// BinaryName returns the erased binary name, for example java/util/Map$Entry.
func (c *ClassType) BinaryName() string {
	var b strings.Builder
	if c.Package != "" {
		b.WriteString(c.Package)
		b.WriteByte('/')
	}
	for i, s := range c.Segments {
		if i > 0 {
			b.WriteByte('$')
		}
		b.WriteString(s.Name)
	}
	return b.String()
}

// Wildcard distinguishes the four type-argument forms.
type Wildcard int

const (
	// Exactly is a plain argument: List<String>.
	Exactly Wildcard = iota
	// Any is the unbounded wildcard "*".
	Any
	// Extends is "+T", ? extends T.
	Extends
	// Super is "-T", ? super T.
	Super
)

// TypeArgument is one argument in a TypeArguments list. Type is nil for Any.
type TypeArgument struct {
	Wildcard Wildcard
	Type     TypeSignature
}

func (a TypeArgument) String() string {
	switch a.Wildcard {
	case Any:
		return "*"
	case Extends:
		return "+" + a.Type.String()
	case Super:
		return "-" + a.Type.String()
	default:
		return a.Type.String()
	}
}

// TypeParameter is a formal type parameter. ClassBound is nil when the
// parameter has only interface bounds.
type TypeParameter struct {
	Name            string
	ClassBound      TypeSignature
	InterfaceBounds []TypeSignature
}

func (p TypeParameter) write(b *strings.Builder) {
	b.WriteString(p.Name)
	b.WriteByte(':')
	if p.ClassBound != nil {
		b.WriteString(p.ClassBound.String())
	}
	for _, ib := range p.InterfaceBounds {
		b.WriteByte(':')
		b.WriteString(ib.String())
	}
}

func (p TypeParameter) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func writeTypeParams(b *strings.Builder, params []TypeParameter) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('<')
	for _, p := range params {
		p.write(b)
	}
	b.WriteByte('>')
}

// ClassSignature is the parsed Signature attribute of a class.
type ClassSignature struct {
	TypeParams []TypeParameter
	Superclass *ClassType
	Interfaces []*ClassType
}

func (s *ClassSignature) String() string {
	var b strings.Builder
	writeTypeParams(&b, s.TypeParams)
	b.WriteString(s.Superclass.String())
	for _, i := range s.Interfaces {
		b.WriteString(i.String())
	}
	return b.String()
}

// IsGeneric reports whether the class declares type parameters.
func (s *ClassSignature) IsGeneric() bool {
	return s != nil && len(s.TypeParams) > 0
}

// MethodSignature is the parsed Signature attribute of a method.
type MethodSignature struct {
	TypeParams []TypeParameter
	Params     []TypeSignature
	// Result is Void for void methods.
	Result TypeSignature
	Throws []TypeSignature
}

func (m *MethodSignature) String() string {
	var b strings.Builder
	writeTypeParams(&b, m.TypeParams)
	b.WriteByte('(')
	for _, p := range m.Params {
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	b.WriteString(m.Result.String())
	for _, t := range m.Throws {
		b.WriteByte('^')
		b.WriteString(t.String())
	}
	return b.String()
}
