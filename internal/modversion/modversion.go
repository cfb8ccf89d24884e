// Package modversion parses and orders module version strings of the form
// N, N.M or N.M.P, each optionally followed by -qualifier.
package modversion

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed module version.
type Version struct {
	Major     uint64
	Minor     uint64
	Patch     uint64
	Qualifier string

	// components records how many numeric fields were written, so String can
	// reproduce the input form.
	components int
}

// Bump is the size of a version step.
type Bump int

const (
	BumpNone Bump = iota
	BumpMinor
	BumpMajor
)

func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	default:
		return "none"
	}
}

// ParseBump parses "major", "minor" or "none".
func ParseBump(s string) (Bump, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "none", "":
		return BumpNone, nil
	}
	return BumpNone, fmt.Errorf("unknown bump %q", s)
}

func (b Bump) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Bump) UnmarshalText(text []byte) error {
	v, err := ParseBump(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Parse parses s. Missing minor and patch fields are zero.
func Parse(s string) (Version, error) {
	var v Version
	raw := strings.TrimSpace(s)
	if raw == "" {
		return v, fmt.Errorf("empty module version")
	}

	numeric := raw
	if i := strings.IndexByte(raw, '-'); i >= 0 {
		numeric = raw[:i]
		v.Qualifier = raw[i+1:]
		if v.Qualifier == "" {
			return Version{}, fmt.Errorf("module version %q: empty qualifier", s)
		}
	}

	parts := strings.Split(numeric, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("module version %q: too many components", s)
	}
	fields := []*uint64{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("module version %q: component %d: %w", s, i+1, err)
		}
		*fields[i] = n
	}
	v.components = len(parts)
	return v, nil
}

// MustParse is Parse that panics; intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.components == 0 && v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Qualifier == ""
}

func (v Version) String() string {
	if v.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.Major, 10))
	if v.components != 1 {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(v.Minor, 10))
	}
	if v.components == 0 || v.components == 3 {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(v.Patch, 10))
	}
	if v.Qualifier != "" {
		b.WriteByte('-')
		b.WriteString(v.Qualifier)
	}
	return b.String()
}

// Compare returns -1, 0 or 1. Numeric fields compare as unsigned integers,
// then qualifiers compare lexically; an empty qualifier sorts first.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpUint(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpUint(a.Minor, b.Minor)
	case a.Patch != b.Patch:
		return cmpUint(a.Patch, b.Patch)
	}
	return strings.Compare(a.Qualifier, b.Qualifier)
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	return 1
}

// Less reports whether a sorts before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Performed returns the bump taken from old to new. A patch or qualifier
// step, or a downgrade, is BumpNone.
func Performed(old, new Version) Bump {
	switch {
	case new.Major > old.Major:
		return BumpMajor
	case new.Major == old.Major && new.Minor > old.Minor:
		return BumpMinor
	default:
		return BumpNone
	}
}

// Sufficient reports whether going from old to new satisfies required.
// Before 1.0 a minor step is accepted for a required major bump.
func Sufficient(old, new Version, required Bump) bool {
	performed := Performed(old, new)
	if performed >= required {
		return true
	}
	return required == BumpMajor && old.Major == 0 && new.Major == 0 && performed == BumpMinor
}
