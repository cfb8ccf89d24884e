package facts

import (
	"fmt"
	"strings"
)

// Access is a declared accessibility level.
type Access int

const (
	Private Access = iota
	PackagePrivate
	Protected
	Public
)

func (a Access) String() string {
	switch a {
	case Private:
		return "private"
	case PackagePrivate:
		return "package-private"
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// ParseAccess accepts private, package (or package-private), protected and public.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private":
		return Private, nil
	case "package", "package-private", "package_private", "":
		return PackagePrivate, nil
	case "protected":
		return Protected, nil
	case "public":
		return Public, nil
	}
	return 0, fmt.Errorf("unknown access %q", s)
}

// AccessOrder ranks accessibility levels. Compare returns -1, 0 or 1.
type AccessOrder struct {
	name string
	rank [4]int
}

var (
	// StandardOrder: private < package-private < protected < public.
	StandardOrder = AccessOrder{name: "standard", rank: [4]int{Private: 0, PackagePrivate: 1, Protected: 2, Public: 3}}
	// LegacyOrder ranks protected below package-private, matching reports
	// produced by earlier tooling.
	LegacyOrder = AccessOrder{name: "legacy", rank: [4]int{Private: 0, Protected: 1, PackagePrivate: 2, Public: 3}}
)

// ParseAccessOrder maps a configuration value to an AccessOrder.
func ParseAccessOrder(s string) (AccessOrder, error) {
	switch strings.ToLower(s) {
	case "", "standard":
		return StandardOrder, nil
	case "legacy":
		return LegacyOrder, nil
	}
	return AccessOrder{}, fmt.Errorf("unknown access order %q", s)
}

func (o AccessOrder) String() string { return o.name }

// Compare orders a and b.
func (o AccessOrder) Compare(a, b Access) int {
	ra, rb := o.rank[a], o.rank[b]
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

// Less reports whether a is strictly less accessible than b.
func (o AccessOrder) Less(a, b Access) bool { return o.Compare(a, b) < 0 }
