package signature

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnboundVariable is returned when a bound refers to a type variable the
// list does not declare.
var ErrUnboundVariable = errors.New("unbound type variable")

// renamer maps declared parameter names to canonical positional names.
// Each list being compared gets its own renamer.
type renamer struct {
	next  int
	names map[string]string
}

func newRenamer() *renamer {
	return &renamer{names: make(map[string]string)}
}

func (r *renamer) bind(name string) string {
	canonical := "#" + strconv.Itoa(r.next)
	r.next++
	r.names[name] = canonical
	return canonical
}

func (r *renamer) ref(name string) (string, error) {
	canonical, ok := r.names[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnboundVariable, name)
	}
	return canonical, nil
}

// Canonicalize returns a copy of params with every declared name and every
// reference to it replaced by its positional name. Binders are assigned in
// declaration order before any bound is visited, so a bound may refer to a
// later parameter.
func Canonicalize(params []TypeParameter) ([]TypeParameter, error) {
	r := newRenamer()
	out := make([]TypeParameter, len(params))
	for i, p := range params {
		if _, dup := r.names[p.Name]; dup {
			return nil, fmt.Errorf("type parameter %q declared twice", p.Name)
		}
		out[i].Name = r.bind(p.Name)
	}
	for i, p := range params {
		var err error
		if p.ClassBound != nil {
			if out[i].ClassBound, err = r.rewrite(p.ClassBound); err != nil {
				return nil, err
			}
		}
		if len(p.InterfaceBounds) > 0 {
			out[i].InterfaceBounds = make([]TypeSignature, len(p.InterfaceBounds))
			for j, b := range p.InterfaceBounds {
				if out[i].InterfaceBounds[j], err = r.rewrite(b); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func (r *renamer) rewrite(t TypeSignature) (TypeSignature, error) {
	switch t := t.(type) {
	case *TypeVariable:
		name, err := r.ref(t.Name)
		if err != nil {
			return nil, err
		}
		return &TypeVariable{Name: name}, nil
	case *ArrayType:
		elem, err := r.rewrite(t.Elem)
		if err != nil {
			return nil, err
		}
		return &ArrayType{Dims: t.Dims, Elem: elem}, nil
	case *ClassType:
		ct := &ClassType{Package: t.Package, Segments: make([]SimpleClassType, len(t.Segments))}
		for i, s := range t.Segments {
			ct.Segments[i].Name = s.Name
			if len(s.Args) == 0 {
				continue
			}
			ct.Segments[i].Args = make([]TypeArgument, len(s.Args))
			for j, a := range s.Args {
				ct.Segments[i].Args[j].Wildcard = a.Wildcard
				if a.Type == nil {
					continue
				}
				rt, err := r.rewrite(a.Type)
				if err != nil {
					return nil, err
				}
				ct.Segments[i].Args[j].Type = rt
			}
		}
		return ct, nil
	default:
		return t, nil
	}
}

// Equivalent reports whether a and b declare the same type parameters up to
// consistent renaming of the parameter names.
func Equivalent(a, b []TypeParameter) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	ca, err := Canonicalize(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false, err
	}
	return EqualParams(ca, cb), nil
}

// EqualParams compares two parameter lists structurally, names included.
func EqualParams(a, b []TypeParameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Equal(a[i].ClassBound, b[i].ClassBound) {
			return false
		}
		if len(a[i].InterfaceBounds) != len(b[i].InterfaceBounds) {
			return false
		}
		for j := range a[i].InterfaceBounds {
			if !Equal(a[i].InterfaceBounds[j], b[i].InterfaceBounds[j]) {
				return false
			}
		}
	}
	return true
}

// Equal compares two type signatures structurally. Two nils are equal.
func Equal(a, b TypeSignature) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case BaseType:
		bb, ok := b.(BaseType)
		return ok && a == bb
	case *TypeVariable:
		bv, ok := b.(*TypeVariable)
		return ok && a.Name == bv.Name
	case *ArrayType:
		ba, ok := b.(*ArrayType)
		return ok && a.Dims == ba.Dims && Equal(a.Elem, ba.Elem)
	case *ClassType:
		bc, ok := b.(*ClassType)
		return ok && equalClassType(a, bc)
	}
	return false
}

func equalClassType(a, b *ClassType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Package != b.Package || len(a.Segments) != len(b.Segments) {
		return false
	}
	for i := range a.Segments {
		sa, sb := a.Segments[i], b.Segments[i]
		if sa.Name != sb.Name || len(sa.Args) != len(sb.Args) {
			return false
		}
		for j := range sa.Args {
			if sa.Args[j].Wildcard != sb.Args[j].Wildcard || !Equal(sa.Args[j].Type, sb.Args[j].Type) {
				return false
			}
		}
	}
	return true
}

// EqualClass compares two class signatures structurally.
func EqualClass(a, b *ClassSignature) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !EqualParams(a.TypeParams, b.TypeParams) || !equalClassType(a.Superclass, b.Superclass) {
		return false
	}
	if len(a.Interfaces) != len(b.Interfaces) {
		return false
	}
	for i := range a.Interfaces {
		if !equalClassType(a.Interfaces[i], b.Interfaces[i]) {
			return false
		}
	}
	return true
}
