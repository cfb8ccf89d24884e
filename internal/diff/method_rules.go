package diff

import (
	"slices"
	"strings"

	"modcompat/internal/facts"
	"modcompat/internal/registry"
)

func methodRules() []Rule[*facts.MethodFact] {
	return []Rule[*facts.MethodFact]{
		newRule("MethodAdded", []string{"JLS 13.4.12 Method and Constructor Declarations", "JLS 13.5.3 Interface Method Declarations"}, methodAdded),
		newRule("MethodOverridesAncestor", []string{"JLS 8.4.8.3 Requirements in Overriding and Hiding", "JLS 13.4.12"}, methodOverridesAncestor),
		newRule("MethodRemoved", []string{"JLS 13.4.12 Method and Constructor Declarations", "JLS 13.5.3 Interface Method Declarations"}, methodRemoved),
		newRule("MethodAccessibility", []string{"JLS 13.4.7 Access to Members and Constructors"}, methodAccessibility),
		newRule("MethodFinal", []string{"JLS 13.4.17 final Methods"}, methodFinal),
		newRule("MethodStatic", []string{"JLS 13.4.19 static Methods"}, bothMethods(func(c *Context, old, new *facts.MethodFact, r *Reporter) {
			if !old.IsInstanceConstructor() {
				flipMethod(c, r, old, new, facts.Static, MethodNowStatic, MethodNoLongerStatic)
			}
		})),
		newRule("MethodAbstract", []string{"JLS 13.4.16 abstract Methods"}, bothMethods(func(c *Context, old, new *facts.MethodFact, r *Reporter) {
			if !old.IsInstanceConstructor() {
				flipMethod(c, r, old, new, facts.Abstract, MethodNowAbstract, MethodNoLongerAbstract)
			}
		})),
		newRule("MethodVarargs", []string{"JLS 8.4.1 Formal Parameters"}, bothMethods(func(c *Context, old, new *facts.MethodFact, r *Reporter) {
			if old.IsInstanceConstructor() {
				flipMethod(c, r, old, new, facts.Varargs, ConstructorNowVarargs, ConstructorNoLongerVarargs)
				return
			}
			flipMethod(c, r, old, new, facts.Varargs, MethodNowVarargs, MethodNoLongerVarargs)
		})),
		newRule("MethodExceptions", []string{"JLS 13.4.22 Method and Constructor Throws"}, bothMethods(methodExceptions)),
		newRule("MethodSynchronized", []string{"JLS 13.4.20 synchronized Methods"}, bothMethods(func(c *Context, old, new *facts.MethodFact, r *Reporter) {
			if !old.IsInstanceConstructor() {
				flipMethod(c, r, old, new, facts.Synchronized, MethodSynchronizedChanged, MethodSynchronizedChanged)
			}
		})),
	}
}

// bothMethods adapts a rule for methods present and exposed on both sides.
func bothMethods(fn func(c *Context, old, new *facts.MethodFact, r *Reporter)) func(*Context, *facts.MethodFact, *facts.MethodFact, *Reporter) error {
	return func(c *Context, old, new *facts.MethodFact, r *Reporter) error {
		if old != nil && new != nil && exposed(old.Access) && exposed(new.Access) {
			fn(c, old, new, r)
		}
		return nil
	}
}

// hasExposedOverload reports whether class declares an exposed method or
// constructor named name.
func hasExposedOverload(class *facts.ClassFact, name string) bool {
	for _, m := range class.MethodsNamed(name) {
		if exposed(m.Access) {
			return true
		}
	}
	return false
}

func methodAdded(c *Context, old, new *facts.MethodFact, r *Reporter) error {
	if old != nil || new == nil || !exposed(new.Access) {
		return nil
	}
	overload := hasExposedOverload(c.OldClass, new.Name)
	var k *Kind
	switch {
	case new.IsInstanceConstructor() && overload:
		k = ConstructorOverloadAdded
	case new.IsInstanceConstructor():
		k = ConstructorAdded
	case c.NewClass.IsInterface():
		k = interfaceMethodKind(new, InterfaceAbstractMethodAdded, InterfaceDefaultMethodAdded, InterfaceStaticMethodAdded)
	case overload:
		k = MethodOverloadAdded
	default:
		k = MethodAdded
	}
	r.Report(methodEvent(c, k, nil, new))
	return nil
}

func interfaceMethodKind(m *facts.MethodFact, abstract, dflt, static *Kind) *Kind {
	switch {
	case m.IsStatic():
		return static
	case m.IsAbstract():
		return abstract
	default:
		return dflt
	}
}

// methodOverridesAncestor flags a new class method that collides with an
// inherited method of the same name and descriptor.
func methodOverridesAncestor(c *Context, old, new *facts.MethodFact, r *Reporter) error {
	if old != nil || new == nil || !exposed(new.Access) || new.IsInstanceConstructor() || c.NewClass.IsInterface() {
		return nil
	}
	ancestors, err := c.NewAncestors()
	if err != nil {
		return err
	}
	inherited, ok := registry.NearestMethod(ancestors, new.Name, new.Descriptor())
	if !ok || !exposed(inherited.Access) {
		return nil
	}
	if inherited.IsStatic() != new.IsStatic() {
		ev := methodEvent(c, MethodStaticMismatchAncestor, nil, new)
		ev.Detail = "conflicts with " + inherited.String()
		r.Report(ev)
	}
	if c.Order.Less(new.Access, inherited.Access) {
		ev := methodEvent(c, MethodLessAccessibleAncestor, nil, new)
		ev.Detail = new.Access.String() + " overrides " + inherited.Access.String() + " " + inherited.String()
		r.Report(ev)
	}
	return nil
}

// methodRemoved reports a method still inherited with the same descriptor as
// moved rather than removed. Constructors are never inherited.
func methodRemoved(c *Context, old, new *facts.MethodFact, r *Reporter) error {
	if old == nil || new != nil || !exposed(old.Access) {
		return nil
	}
	switch {
	case old.IsInstanceConstructor():
		r.Report(methodEvent(c, ConstructorRemoved, old, nil))
		return nil
	case c.OldClass.IsInterface():
		k := interfaceMethodKind(old, InterfaceAbstractMethodRemoved, InterfaceDefaultMethodRemoved, InterfaceStaticMethodRemoved)
		r.Report(methodEvent(c, k, old, nil))
		return nil
	}

	ancestors, err := c.NewAncestors()
	if err != nil {
		return err
	}
	if inherited, ok := registry.NearestMethod(ancestors, old.Name, old.Descriptor()); ok && exposed(inherited.Access) {
		ev := methodEvent(c, MethodMovedToSuperclass, old, nil)
		ev.Detail = "now declared by " + inherited.Owner.Qualified()
		r.Report(ev)
		return nil
	}
	r.Report(methodEvent(c, MethodRemoved, old, nil))
	return nil
}

func methodAccessibility(c *Context, old, new *facts.MethodFact, r *Reporter) error {
	if old == nil || new == nil || (!exposed(old.Access) && !exposed(new.Access)) {
		return nil
	}
	more, less := MethodMoreAccessible, MethodLessAccessible
	if old.IsInstanceConstructor() {
		more, less = ConstructorMoreAccessible, ConstructorLessAccessible
	}
	var k *Kind
	switch d := c.accessibilityDelta(old.Access, new.Access); {
	case d > 0:
		k = more
	case d < 0:
		k = less
	default:
		return nil
	}
	ev := methodEvent(c, k, old, new)
	ev.Detail = old.Access.String() + " -> " + new.Access.String()
	r.Report(ev)
	return nil
}

// methodFinal is skipped for final classes, whose methods cannot be
// overridden either way, and for private methods.
func methodFinal(c *Context, old, new *facts.MethodFact, r *Reporter) error {
	if old == nil || new == nil || old.IsInstanceConstructor() {
		return nil
	}
	if c.NewClass.IsFinal() || old.Access == facts.Private || new.Access == facts.Private {
		return nil
	}
	flipMethod(c, r, old, new, facts.Final, MethodNowFinal, MethodNoLongerFinal)
	return nil
}

func methodExceptions(c *Context, old, new *facts.MethodFact, r *Reporter) {
	was, is := old.SortedExceptions(), new.SortedExceptions()
	if slices.Equal(was, is) {
		return
	}
	k := MethodExceptionsChanged
	if old.IsInstanceConstructor() {
		k = ConstructorExceptionsChanged
	}
	ev := methodEvent(c, k, old, new)
	ev.Detail = "[" + strings.Join(was, ", ") + "] -> [" + strings.Join(is, ", ") + "]"
	r.Report(ev)
}

func flipMethod(c *Context, r *Reporter, old, new *facts.MethodFact, m facts.Modifier, now, noLonger *Kind) {
	was, is := old.Modifiers.Has(m), new.Modifiers.Has(m)
	switch {
	case !was && is:
		r.Report(methodEvent(c, now, old, new))
	case was && !is:
		r.Report(methodEvent(c, noLonger, old, new))
	}
}

// methodEvent carries constructors as ConstructorFacts.
func methodEvent(c *Context, k *Kind, old, new *facts.MethodFact) Event {
	m := new
	if m == nil {
		m = old
	}
	ev := Event{
		Kind:    k,
		Module:  c.moduleName(),
		Class:   m.Owner,
		Subject: m.String(),
	}
	if m.IsInstanceConstructor() {
		ev.Old, ev.New = stringer(asConstructor(old)), stringer(asConstructor(new))
	} else {
		ev.Old, ev.New = stringer(old), stringer(new)
	}
	return ev
}

func asConstructor(m *facts.MethodFact) *facts.ConstructorFact {
	if m == nil {
		return nil
	}
	return &facts.ConstructorFact{Method: m}
}
