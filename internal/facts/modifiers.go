package facts

import (
	"fmt"
	"strings"
)

// Modifier is a single declaration flag.
type Modifier uint16

const (
	Abstract Modifier = 1 << iota
	Final
	Static
	Enum
	Interface
	Synchronized
	Varargs
	Transient
	Volatile
)

var modifierNames = []struct {
	m    Modifier
	name string
}{
	{Abstract, "abstract"},
	{Final, "final"},
	{Static, "static"},
	{Enum, "enum"},
	{Interface, "interface"},
	{Synchronized, "synchronized"},
	{Varargs, "varargs"},
	{Transient, "transient"},
	{Volatile, "volatile"},
}

func (m Modifier) String() string {
	for _, n := range modifierNames {
		if n.m == m {
			return n.name
		}
	}
	return fmt.Sprintf("Modifier(%#x)", uint16(m))
}

// ParseModifier accepts the lowercase modifier names.
func ParseModifier(s string) (Modifier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range modifierNames {
		if n.name == s {
			return n.m, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}

// ModifierSet is an immutable set of modifiers.
type ModifierSet struct {
	bits Modifier
}

// Modifiers builds a set from the given flags.
func Modifiers(ms ...Modifier) ModifierSet {
	var s ModifierSet
	for _, m := range ms {
		s.bits |= m
	}
	return s
}

// ParseModifiers builds a set from names.
func ParseModifiers(names []string) (ModifierSet, error) {
	var s ModifierSet
	for _, n := range names {
		m, err := ParseModifier(n)
		if err != nil {
			return ModifierSet{}, err
		}
		s.bits |= m
	}
	return s, nil
}

func (s ModifierSet) Has(m Modifier) bool { return s.bits&m == m }
func (s ModifierSet) With(m Modifier) ModifierSet {
	return ModifierSet{bits: s.bits | m}
}
func (s ModifierSet) Without(m Modifier) ModifierSet {
	return ModifierSet{bits: s.bits &^ m}
}
func (s ModifierSet) IsEmpty() bool { return s.bits == 0 }

// Slice lists the members in declaration order of the constants.
func (s ModifierSet) Slice() []Modifier {
	var out []Modifier
	for _, n := range modifierNames {
		if s.bits&n.m != 0 {
			out = append(out, n.m)
		}
	}
	return out
}

func (s ModifierSet) String() string {
	ms := s.Slice()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	return strings.Join(names, " ")
}
