// Package registry resolves classes across a closed set of module snapshots
// and computes superclass chains.
package registry

import (
	"fmt"
	"log/slog"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
)

// Registry maps packages to their owning module over a fixed list of
// snapshots. It is read-only after New.
type Registry struct {
	modules  map[string]ModuleSnapshot
	packages map[string]string // package -> module name
	order    []string
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lookup tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New builds a registry. Every export entry, qualified or not, and every
// present package claims its package for the module; a package claimed by
// two modules is an invariant violation.
func New(snapshots []ModuleSnapshot, opts ...Option) (*Registry, error) {
	r := &Registry{
		modules:  make(map[string]ModuleSnapshot, len(snapshots)),
		packages: make(map[string]string),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}

	for _, s := range snapshots {
		name := s.Descriptor().Name
		if _, dup := r.modules[name]; dup {
			return nil, errors.Newf(errors.InvariantViolation, "module %s supplied twice", name)
		}
		r.modules[name] = s
		r.order = append(r.order, name)
	}

	for _, name := range r.order {
		s := r.modules[name]
		pkgs := append(s.Descriptor().ExportedPackages(), s.Packages()...)
		for _, pkg := range pkgs {
			owner, claimed := r.packages[pkg]
			if claimed && owner != name {
				return nil, errors.Newf(errors.InvariantViolation,
					"package %s is owned by both %s and %s", pkg, owner, name)
			}
			r.packages[pkg] = name
		}
	}

	r.logger.Debug("Registry built", "modules", len(r.modules), "packages", len(r.packages))
	return r, nil
}

// Module returns the snapshot of the named module.
func (r *Registry) Module(name string) (ModuleSnapshot, bool) {
	s, ok := r.modules[name]
	return s, ok
}

// Modules lists module names in construction order.
func (r *Registry) Modules() []string {
	return append([]string(nil), r.order...)
}

// OwnerOf returns the module that owns pkg.
func (r *Registry) OwnerOf(pkg string) (string, bool) {
	m, ok := r.packages[pkg]
	return m, ok
}

// FindClass resolves pkg.name through the package map. An unknown package
// or class is a miss, not an error.
func (r *Registry) FindClass(pkg, name string) (*facts.ClassFact, bool, error) {
	module, ok := r.packages[pkg]
	if !ok {
		return nil, false, nil
	}
	return r.FindClassInModule(module, pkg, name)
}

// FindClassInModule looks pkg.name up in one module only.
func (r *Registry) FindClassInModule(module, pkg, name string) (*facts.ClassFact, bool, error) {
	s, ok := r.modules[module]
	if !ok {
		return nil, false, nil
	}
	c, found, err := s.Class(pkg, name)
	if err != nil {
		return nil, false, errors.New(errors.ResolutionIO,
			fmt.Sprintf("reading %s.%s from module %s", pkg, name, module), err)
	}
	return c, found, nil
}

// Resolve is FindClass for a TypeRef.
func (r *Registry) Resolve(ref facts.TypeRef) (*facts.ClassFact, bool, error) {
	return r.FindClass(ref.Package, ref.Name)
}

// Ancestors returns the superclass chain of c, most distant first, without
// c itself. The chain ends at the first superclass that cannot be resolved.
func (r *Registry) Ancestors(c *facts.ClassFact) ([]*facts.ClassFact, error) {
	var chain []*facts.ClassFact
	seen := map[string]bool{c.Name.Qualified(): true}

	for cur := c; cur.Superclass != nil; {
		next, found, err := r.Resolve(*cur.Superclass)
		if err != nil {
			return nil, fmt.Errorf("ancestors of %s: %w", c.Name.Qualified(), err)
		}
		if !found {
			r.logger.Debug("Ancestor chain ends outside registry",
				"class", c.Name.Qualified(), "missing", cur.Superclass.Qualified())
			break
		}
		q := next.Name.Qualified()
		if seen[q] {
			break
		}
		seen[q] = true
		chain = append([]*facts.ClassFact{next}, chain...)
		cur = next
	}
	return chain, nil
}

// AncestorNames returns the qualified names along c's superclass chain,
// nearest first, including the first name that could not be resolved.
func (r *Registry) AncestorNames(c *facts.ClassFact) ([]string, error) {
	var names []string
	seen := map[string]bool{c.Name.Qualified(): true}
	for cur := c; cur.Superclass != nil; {
		q := cur.Superclass.Qualified()
		if seen[q] {
			break
		}
		seen[q] = true
		names = append(names, q)
		next, found, err := r.Resolve(*cur.Superclass)
		if err != nil {
			return nil, fmt.Errorf("ancestors of %s: %w", c.Name.Qualified(), err)
		}
		if !found {
			break
		}
		cur = next
	}
	return names, nil
}

// NearestField returns the field named name declared by the nearest
// ancestor. ancestors must be ordered most distant first.
func NearestField(ancestors []*facts.ClassFact, name string) (*facts.FieldFact, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if f, ok := ancestors[i].Field(name); ok {
			return f, true
		}
	}
	return nil, false
}

// NearestFieldOfType returns the nearest field matching both name and type
// descriptor, the pair the linker resolves fields by.
func NearestFieldOfType(ancestors []*facts.ClassFact, name, descriptor string) (*facts.FieldFact, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if f, ok := ancestors[i].Field(name); ok && f.Descriptor == descriptor {
			return f, true
		}
	}
	return nil, false
}

// NearestMethod returns the method with name and descriptor declared by the
// nearest ancestor.
func NearestMethod(ancestors []*facts.ClassFact, name, descriptor string) (*facts.MethodFact, bool) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if m, ok := ancestors[i].Method(name, descriptor); ok {
			return m, true
		}
	}
	return nil, false
}
