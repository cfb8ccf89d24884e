package diff

import (
	"log/slog"

	"modcompat/internal/facts"
	"modcompat/internal/registry"
)

// Check names a rule and points at the language rules it enforces. The
// references are documentation only.
type Check interface {
	Name() string
	SpecificationReferences() []string
}

// Rule compares one kind of element. For added or removed elements one side
// is nil. A returned error aborts the comparison.
type Rule[T any] interface {
	Check
	Apply(c *Context, old, new T, r *Reporter) error
}

type ruleFunc[T any] struct {
	name  string
	refs  []string
	apply func(c *Context, old, new T, r *Reporter) error
}

func newRule[T any](name string, refs []string, apply func(c *Context, old, new T, r *Reporter) error) Rule[T] {
	return &ruleFunc[T]{name: name, refs: refs, apply: apply}
}

func (f *ruleFunc[T]) Name() string                      { return f.name }
func (f *ruleFunc[T]) SpecificationReferences() []string { return append([]string(nil), f.refs...) }
func (f *ruleFunc[T]) Apply(c *Context, old, new T, r *Reporter) error {
	return f.apply(c, old, new, r)
}

// Context is the read-only state of one comparison.
type Context struct {
	OldRegistry *registry.Registry
	NewRegistry *registry.Registry
	Old         registry.ModuleSnapshot
	New         registry.ModuleSnapshot
	Order       facts.AccessOrder
	Logger      *slog.Logger

	// OldClass and NewClass are the classes under comparison; either is nil
	// while a class is reported added or removed.
	OldClass *facts.ClassFact
	NewClass *facts.ClassFact

	ancestors     []*facts.ClassFact
	ancestorsDone bool
}

func (c *Context) enterClass(old, new *facts.ClassFact) {
	c.OldClass, c.NewClass = old, new
	c.ancestors, c.ancestorsDone = nil, false
}

// NewAncestors returns the superclass chain of NewClass in the new registry,
// most distant first. The chain is computed once per class.
func (c *Context) NewAncestors() ([]*facts.ClassFact, error) {
	if c.ancestorsDone {
		return c.ancestors, nil
	}
	chain, err := c.NewRegistry.Ancestors(c.NewClass)
	if err != nil {
		return nil, err
	}
	c.ancestors, c.ancestorsDone = chain, true
	return chain, nil
}

func (c *Context) moduleName() string { return c.New.Descriptor().Name }

// accessibilityDelta reports the direction of an access change: positive
// when new is more accessible than old.
func (c *Context) accessibilityDelta(old, new facts.Access) int {
	return c.Order.Compare(new, old)
}

// Reporter buffers events with the check that is currently running.
type Reporter struct {
	check   Check
	pending []Recorded
}

// Report records ev for delivery once the comparison succeeds.
func (r *Reporter) Report(ev Event) {
	r.pending = append(r.pending, Recorded{Check: r.check, Event: ev})
}

// Len returns the number of buffered events.
func (r *Reporter) Len() int { return len(r.pending) }
