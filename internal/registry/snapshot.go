package registry

import (
	"sort"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
)

// ModuleSnapshot is one loaded version of a module. Class returns false
// with a nil error when the class does not exist; a non-nil error means the
// underlying read failed.
type ModuleSnapshot interface {
	Descriptor() *facts.ModuleDescriptor
	// Packages lists every package present in the snapshot, exported or not.
	Packages() []string
	// ClassNames lists the classes of pkg in sorted order.
	ClassNames(pkg string) ([]string, error)
	Class(pkg, name string) (*facts.ClassFact, bool, error)
}

// MemorySnapshot is a ModuleSnapshot over already-built facts.
type MemorySnapshot struct {
	descriptor *facts.ModuleDescriptor
	classes    map[string]map[string]*facts.ClassFact
}

// NewMemorySnapshot indexes classes by package. Each class must belong to
// the descriptor's module.
func NewMemorySnapshot(d *facts.ModuleDescriptor, classes ...*facts.ClassFact) (*MemorySnapshot, error) {
	s := &MemorySnapshot{descriptor: d, classes: make(map[string]map[string]*facts.ClassFact)}
	for _, c := range classes {
		if c.Name.Module != d.Name {
			return nil, errors.Newf(errors.InvariantViolation, "class %s does not belong to module %s", c.Name, d.Name)
		}
		byName, ok := s.classes[c.Name.Package]
		if !ok {
			byName = make(map[string]*facts.ClassFact)
			s.classes[c.Name.Package] = byName
		}
		if _, dup := byName[c.Name.Name]; dup {
			return nil, errors.Newf(errors.InvariantViolation, "class %s added twice", c.Name)
		}
		byName[c.Name.Name] = c
	}
	return s, nil
}

func (s *MemorySnapshot) Descriptor() *facts.ModuleDescriptor { return s.descriptor }

func (s *MemorySnapshot) Packages() []string {
	set := make(map[string]bool, len(s.classes))
	for p := range s.classes {
		set[p] = true
	}
	for _, p := range s.descriptor.ExportedPackages() {
		set[p] = true
	}
	return facts.SortedKeys(set)
}

func (s *MemorySnapshot) ClassNames(pkg string) ([]string, error) {
	byName := s.classes[pkg]
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemorySnapshot) Class(pkg, name string) (*facts.ClassFact, bool, error) {
	c, ok := s.classes[pkg][name]
	return c, ok, nil
}
