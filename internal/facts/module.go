package facts

import (
	"sort"

	"modcompat/internal/modversion"
)

// ModuleDescriptor is the decoded module-info of a snapshot.
type ModuleDescriptor struct {
	Name    string
	Version modversion.Version

	Exports          map[string]bool
	QualifiedExports map[string][]string // package -> sorted target modules
	Opens            map[string]bool
	QualifiedOpens   map[string][]string
	Requires         map[string]bool     // module -> transitive
	Provides         map[string][]string // service -> sorted providers
}

// NewModuleDescriptor returns a descriptor with empty directive sets.
func NewModuleDescriptor(name string) *ModuleDescriptor {
	return &ModuleDescriptor{
		Name:             name,
		Exports:          make(map[string]bool),
		QualifiedExports: make(map[string][]string),
		Opens:            make(map[string]bool),
		QualifiedOpens:   make(map[string][]string),
		Requires:         make(map[string]bool),
		Provides:         make(map[string][]string),
	}
}

func (d *ModuleDescriptor) String() string { return d.Name }

// Export adds an unqualified export.
func (d *ModuleDescriptor) Export(pkg string) *ModuleDescriptor {
	d.Exports[pkg] = true
	return d
}

// ExportTo adds a qualified export.
func (d *ModuleDescriptor) ExportTo(pkg string, targets ...string) *ModuleDescriptor {
	d.QualifiedExports[pkg] = sortedUnion(d.QualifiedExports[pkg], targets)
	return d
}

// Open adds an unqualified open.
func (d *ModuleDescriptor) Open(pkg string) *ModuleDescriptor {
	d.Opens[pkg] = true
	return d
}

// OpenTo adds a qualified open.
func (d *ModuleDescriptor) OpenTo(pkg string, targets ...string) *ModuleDescriptor {
	d.QualifiedOpens[pkg] = sortedUnion(d.QualifiedOpens[pkg], targets)
	return d
}

// Require adds a dependency.
func (d *ModuleDescriptor) Require(module string, transitive bool) *ModuleDescriptor {
	d.Requires[module] = transitive
	return d
}

// Provide adds service providers.
func (d *ModuleDescriptor) Provide(service string, providers ...string) *ModuleDescriptor {
	d.Provides[service] = sortedUnion(d.Provides[service], providers)
	return d
}

// ExportedPackages returns every package named by an export entry, qualified
// or not, in sorted order.
func (d *ModuleDescriptor) ExportedPackages() []string {
	set := make(map[string]bool, len(d.Exports)+len(d.QualifiedExports))
	for p := range d.Exports {
		set[p] = true
	}
	for p := range d.QualifiedExports {
		set[p] = true
	}
	return SortedKeys(set)
}

// PublicPackages returns the unqualified exports in sorted order.
func (d *ModuleDescriptor) PublicPackages() []string {
	return SortedKeys(d.Exports)
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnion(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	return SortedKeys(set)
}
