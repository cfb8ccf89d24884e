package signature

import (
	"fmt"
	"strings"
)

// ParseError reports malformed signature input. No partial tree accompanies it.
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("signature %q: offset %d: %s", e.Input, e.Offset, e.Reason)
}

type parser struct {
	in  string
	pos int
}

// bail aborts the parse; recovered in run.
type bail struct{ err *ParseError }

func (p *parser) fail(format string, args ...interface{}) {
	panic(bail{&ParseError{Input: p.in, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}})
}

// run executes fn and converts a bail into a returned error. Input must be
// fully consumed.
func run[T any](in string, fn func(p *parser) T) (out T, err error) {
	p := &parser{in: in}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			var zero T
			out, err = zero, b.err
		}
	}()
	out = fn(p)
	if !p.eof() {
		p.fail("unexpected trailing input %q", p.in[p.pos:])
	}
	return out, nil
}

// ParseClass parses a class Signature attribute.
func ParseClass(s string) (*ClassSignature, error) {
	return run(s, (*parser).classSignature)
}

// ParseType parses a single reference type signature, the form used by
// field Signature attributes.
func ParseType(s string) (TypeSignature, error) {
	return run(s, (*parser).referenceType)
}

// ParseMethod parses a method Signature attribute.
func ParseMethod(s string) (*MethodSignature, error) {
	return run(s, (*parser).methodSignature)
}

func (p *parser) eof() bool { return p.pos >= len(p.in) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) expect(c byte) {
	if p.eof() {
		p.fail("expected %q, got end of input", c)
	}
	if p.in[p.pos] != c {
		p.fail("expected %q, got %q", c, p.in[p.pos])
	}
	p.pos++
}

// ClassSignature = [TypeParameters] SuperclassSignature {SuperinterfaceSignature}
func (p *parser) classSignature() *ClassSignature {
	sig := &ClassSignature{}
	if p.peek() == '<' {
		sig.TypeParams = p.typeParameters()
	}
	sig.Superclass = p.classType()
	for !p.eof() {
		sig.Interfaces = append(sig.Interfaces, p.classType())
	}
	return sig
}

// MethodSignature = [TypeParameters] "(" {JavaTypeSignature} ")" Result {"^" Throws}
func (p *parser) methodSignature() *MethodSignature {
	sig := &MethodSignature{}
	if p.peek() == '<' {
		sig.TypeParams = p.typeParameters()
	}
	p.expect('(')
	for p.peek() != ')' {
		if p.eof() {
			p.fail("unterminated parameter list")
		}
		sig.Params = append(sig.Params, p.javaType())
	}
	p.expect(')')
	if p.peek() == 'V' {
		p.pos++
		sig.Result = Void
	} else {
		sig.Result = p.javaType()
	}
	for p.peek() == '^' {
		p.pos++
		switch p.peek() {
		case 'L', 'T':
			sig.Throws = append(sig.Throws, p.referenceType())
		default:
			p.fail("throws clause must be a class or type variable")
		}
	}
	return sig
}

// TypeParameters = "<" TypeParameter {TypeParameter} ">"
func (p *parser) typeParameters() []TypeParameter {
	p.expect('<')
	var params []TypeParameter
	for {
		params = append(params, p.typeParameter())
		if p.peek() == '>' {
			p.pos++
			return params
		}
		if p.eof() {
			p.fail("unterminated type parameter list")
		}
	}
}

// TypeParameter = Identifier ClassBound {InterfaceBound}
func (p *parser) typeParameter() TypeParameter {
	tp := TypeParameter{Name: p.identifier()}
	p.expect(':')
	if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
		tp.ClassBound = p.referenceType()
	}
	for p.peek() == ':' {
		p.pos++
		tp.InterfaceBounds = append(tp.InterfaceBounds, p.referenceType())
	}
	return tp
}

// ReferenceTypeSignature = ClassTypeSignature | TypeVariableSignature | ArrayTypeSignature
func (p *parser) referenceType() TypeSignature {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		return p.typeVariable()
	case '[':
		return p.arrayType()
	case 0:
		p.fail("expected reference type, got end of input")
	default:
		p.fail("expected reference type, got %q", p.peek())
	}
	return nil
}

// JavaTypeSignature = ReferenceTypeSignature | BaseType
func (p *parser) javaType() TypeSignature {
	if c := p.peek(); isBaseType(c) {
		p.pos++
		return BaseType(c)
	}
	return p.referenceType()
}

// ArrayTypeSignature = "[" JavaTypeSignature. Nested arrays collapse into
// one node whose Dims counts the brackets.
func (p *parser) arrayType() TypeSignature {
	dims := 0
	for p.peek() == '[' {
		p.pos++
		dims++
	}
	return &ArrayType{Dims: dims, Elem: p.javaType()}
}

// TypeVariableSignature = "T" Identifier ";"
func (p *parser) typeVariable() TypeSignature {
	p.expect('T')
	name := p.identifier()
	p.expect(';')
	return &TypeVariable{Name: name}
}

// ClassTypeSignature = "L" [Pkg "/"] Simple {"." Simple} ";"
func (p *parser) classType() *ClassType {
	p.expect('L')
	ct := &ClassType{}

	// The first segment may carry a package prefix; identifiers separated by
	// '/' belong to the package until the last one.
	var parts []string
	for {
		parts = append(parts, p.identifier())
		if p.peek() != '/' {
			break
		}
		p.pos++
	}
	ct.Package = strings.Join(parts[:len(parts)-1], "/")
	ct.Segments = append(ct.Segments, p.simpleClassType(parts[len(parts)-1]))

	for p.peek() == '.' {
		p.pos++
		ct.Segments = append(ct.Segments, p.simpleClassType(p.identifier()))
	}
	p.expect(';')
	return ct
}

// Simple = Identifier [TypeArguments]
func (p *parser) simpleClassType(name string) SimpleClassType {
	s := SimpleClassType{Name: name}
	if p.peek() == '<' {
		s.Args = p.typeArguments()
	}
	return s
}

// TypeArguments = "<" TypeArgument {TypeArgument} ">"
func (p *parser) typeArguments() []TypeArgument {
	p.expect('<')
	var args []TypeArgument
	for {
		args = append(args, p.typeArgument())
		if p.peek() == '>' {
			p.pos++
			return args
		}
		if p.eof() {
			p.fail("unterminated type argument list")
		}
	}
}

// TypeArgument = "*" | ["+" | "-"] ReferenceTypeSignature
func (p *parser) typeArgument() TypeArgument {
	switch p.peek() {
	case '*':
		p.pos++
		return TypeArgument{Wildcard: Any}
	case '+':
		p.pos++
		return TypeArgument{Wildcard: Extends, Type: p.referenceType()}
	case '-':
		p.pos++
		return TypeArgument{Wildcard: Super, Type: p.referenceType()}
	default:
		return TypeArgument{Wildcard: Exactly, Type: p.referenceType()}
	}
}

// identifier reads up to the next signature delimiter.
func (p *parser) identifier() string {
	start := p.pos
	n := strings.IndexAny(p.in[start:], identDelimiters)
	if n < 0 {
		n = len(p.in) - start
	}
	if n == 0 {
		if p.eof() {
			p.fail("expected identifier, got end of input")
		}
		p.fail("expected identifier, got %q", p.in[p.pos])
	}
	p.pos = start + n
	return p.in[start:p.pos]
}

const identDelimiters = ".;[/<>:"
