// Package diff compares two snapshots of a module and classifies every API
// change by binary, source and semantic-versioning impact.
package diff

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/registry"
)

// Engine holds the fixed rule catalog. It is immutable after NewEngine and
// may run comparisons from several goroutines, one per module pair.
type Engine struct {
	order  facts.AccessOrder
	logger *slog.Logger

	moduleRules []Rule[*facts.ModuleDescriptor]
	classRules  []Rule[*facts.ClassFact]
	fieldRules  []Rule[*facts.FieldFact]
	methodRules []Rule[*facts.MethodFact]
}

// Option configures an Engine.
type Option func(*Engine)

// WithAccessOrder selects the accessibility ranking used for direction
// checks. The default is facts.StandardOrder.
func WithAccessOrder(o facts.AccessOrder) Option {
	return func(e *Engine) { e.order = o }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine builds the rule catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		order:       facts.StandardOrder,
		logger:      slog.New(slog.DiscardHandler),
		moduleRules: moduleRules(),
		classRules:  classRules(),
		fieldRules:  fieldRules(),
		methodRules: methodRules(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Checks lists the catalog in evaluation order.
func (e *Engine) Checks() []Check {
	var out []Check
	for _, r := range e.moduleRules {
		out = append(out, r)
	}
	for _, r := range e.classRules {
		out = append(out, r)
	}
	for _, r := range e.fieldRules {
		out = append(out, r)
	}
	for _, r := range e.methodRules {
		out = append(out, r)
	}
	return out
}

// CompareModules diffs old against new and hands every event to recv. The
// registries resolve ancestors for the old and new side respectively and
// normally contain old and new themselves.
//
// Events are delivered only after the whole comparison succeeded; on error
// recv sees nothing.
func (e *Engine) CompareModules(recv Receiver, oldReg, newReg *registry.Registry, old, new registry.ModuleSnapshot) error {
	start := time.Now()
	od, nd := old.Descriptor(), new.Descriptor()
	if od.Name != nd.Name {
		e.logger.Warn("Comparing differently named modules", "old", od.Name, "new", nd.Name)
	}

	c := &Context{
		OldRegistry: oldReg,
		NewRegistry: newReg,
		Old:         old,
		New:         new,
		Order:       e.order,
		Logger:      e.logger,
	}
	r := &Reporter{}

	if err := apply(c, r, e.moduleRules, od, nd); err != nil {
		return err
	}
	classes := 0
	for _, pkg := range nd.PublicPackages() {
		n, err := e.comparePackage(c, r, pkg)
		if err != nil {
			e.logger.Debug("Comparison aborted", "module", nd.Name, "package", pkg, "error", err)
			return err
		}
		e.logger.Debug("Package compared", "module", nd.Name, "package", pkg, "classes", n)
		classes += n
	}

	for _, rec := range r.pending {
		recv.OnChange(rec.Check, rec.Event)
	}
	e.logger.Debug("Module compared",
		"module", nd.Name,
		"old", od.Version.String(),
		"new", nd.Version.String(),
		"classes", classes,
		"events", len(r.pending),
		"duration", time.Since(start))
	return nil
}

func apply[T any](c *Context, r *Reporter, rules []Rule[T], old, new T) error {
	for _, rule := range rules {
		r.check = rule
		if err := rule.Apply(c, old, new, r); err != nil {
			return fmt.Errorf("%s: %w", rule.Name(), err)
		}
	}
	return nil
}

// comparePackage visits the union of old and new classes of pkg in sorted
// order. Classes of a package the old module did not export count as absent
// on the old side.
func (e *Engine) comparePackage(c *Context, r *Reporter, pkg string) (int, error) {
	newNames, err := c.New.ClassNames(pkg)
	if err != nil {
		return 0, readError(c.New, pkg, "", err)
	}
	var oldNames []string
	if c.Old.Descriptor().Exports[pkg] {
		if oldNames, err = c.Old.ClassNames(pkg); err != nil {
			return 0, readError(c.Old, pkg, "", err)
		}
	}

	inOld := make(map[string]bool, len(oldNames))
	for _, n := range oldNames {
		inOld[n] = true
	}
	inNew := make(map[string]bool, len(newNames))
	for _, n := range newNames {
		inNew[n] = true
	}

	visited := 0
	for _, name := range unionKeys(inOld, inNew) {
		oc, err := lookup(c.Old, inOld[name], pkg, name)
		if err != nil {
			return visited, err
		}
		nc, err := lookup(c.New, inNew[name], pkg, name)
		if err != nil {
			return visited, err
		}

		oldVisible := oc != nil && oc.IsPublic()
		newVisible := nc != nil && nc.IsPublic()
		switch {
		case !oldVisible && !newVisible:
			continue
		case !oldVisible:
			oc = nil
		case !newVisible:
			nc = nil
		}

		visited++
		c.enterClass(oc, nc)
		if err := apply(c, r, e.classRules, oc, nc); err != nil {
			return visited, err
		}
		if oc != nil && nc != nil {
			if err := e.compareMembers(c, r, oc, nc); err != nil {
				return visited, err
			}
		}
	}
	return visited, nil
}

func lookup(s registry.ModuleSnapshot, present bool, pkg, name string) (*facts.ClassFact, error) {
	if !present {
		return nil, nil
	}
	c, found, err := s.Class(pkg, name)
	if err != nil {
		return nil, readError(s, pkg, name, err)
	}
	if !found {
		return nil, nil
	}
	return c, nil
}

func readError(s registry.ModuleSnapshot, pkg, name string, cause error) error {
	what := pkg
	if name != "" {
		what = pkg + "." + name
	}
	module := s.Descriptor().Name
	return errors.New(errors.ResolutionIO,
		fmt.Sprintf("reading %s from module %s", what, module), cause).
		WithDetails(map[string]string{"module": module, "package": pkg, "class": name})
}

// compareMembers runs the field and method rules over the union of members,
// fields by name and methods by name then descriptor. Static initializers
// are not API and never visited.
func (e *Engine) compareMembers(c *Context, r *Reporter, oc, nc *facts.ClassFact) error {
	fieldNames := make(map[string]bool)
	for _, f := range oc.Fields {
		fieldNames[f.Name] = true
	}
	for _, f := range nc.Fields {
		fieldNames[f.Name] = true
	}
	for _, name := range facts.SortedKeys(fieldNames) {
		of, _ := oc.Field(name)
		nf, _ := nc.Field(name)
		if of != nil && nf != nil && of.IsEnumConstant() && nf.IsEnumConstant() {
			continue
		}
		if err := apply(c, r, e.fieldRules, of, nf); err != nil {
			return err
		}
	}

	for _, key := range methodKeys(oc, nc) {
		om, _ := oc.Method(key.name, key.descriptor)
		nm, _ := nc.Method(key.name, key.descriptor)
		if err := apply(c, r, e.methodRules, om, nm); err != nil {
			return err
		}
	}
	return nil
}

type methodKey struct{ name, descriptor string }

func methodKeys(classes ...*facts.ClassFact) []methodKey {
	seen := make(map[methodKey]bool)
	var keys []methodKey
	for _, c := range classes {
		for _, m := range c.Methods {
			if m.IsStaticInitializer() {
				continue
			}
			k := methodKey{m.Name, m.Descriptor()}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].descriptor < keys[j].descriptor
	})
	return keys
}
