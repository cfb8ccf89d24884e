package diff

import (
	"modcompat/internal/facts"
	"modcompat/internal/registry"
)

func fieldRules() []Rule[*facts.FieldFact] {
	return []Rule[*facts.FieldFact]{
		newRule("FieldAdded", []string{"JLS 13.4.8 Field Declarations"}, fieldAdded),
		newRule("FieldHidesAncestor", []string{"JLS 13.4.8 Field Declarations", "JVMS 5.4.3.2 Field Resolution"}, fieldHidesAncestor),
		newRule("FieldRemoved", []string{"JLS 13.4.8 Field Declarations"}, fieldRemoved),
		newRule("FieldAccessibility", []string{"JLS 13.4.7 Access to Members and Constructors"}, fieldAccessibility),
		newRule("FieldFinal", []string{"JLS 13.4.9 final Fields and Static Constant Variables"}, bothFields(func(c *Context, old, new *facts.FieldFact, r *Reporter) {
			flipField(c, r, old, new, facts.Final, FieldNowFinal, FieldNoLongerFinal)
		})),
		newRule("FieldStatic", []string{"JLS 13.4.10 static Fields"}, bothFields(func(c *Context, old, new *facts.FieldFact, r *Reporter) {
			flipField(c, r, old, new, facts.Static, FieldNowStatic, FieldNoLongerStatic)
		})),
		newRule("FieldType", []string{"JLS 13.4.8 Field Declarations"}, bothFields(func(c *Context, old, new *facts.FieldFact, r *Reporter) {
			if old.Descriptor != new.Descriptor {
				ev := fieldEvent(c, FieldTypeChanged, old, new)
				ev.Detail = old.Descriptor + " -> " + new.Descriptor
				r.Report(ev)
			}
		})),
		newRule("FieldTransient", []string{"JLS 13.4.11 transient Fields"}, bothFields(func(c *Context, old, new *facts.FieldFact, r *Reporter) {
			flipField(c, r, old, new, facts.Transient, FieldTransientChanged, FieldTransientChanged)
		})),
		newRule("FieldVolatile", []string{"JLS 8.3.1.4 volatile Fields"}, bothFields(func(c *Context, old, new *facts.FieldFact, r *Reporter) {
			flipField(c, r, old, new, facts.Volatile, FieldVolatileChanged, FieldVolatileChanged)
		})),
	}
}

// exposed reports whether a member is visible outside its own class.
func exposed(a facts.Access) bool { return a != facts.Private }

// bothFields adapts a rule for fields present and exposed on both sides.
func bothFields(fn func(c *Context, old, new *facts.FieldFact, r *Reporter)) func(*Context, *facts.FieldFact, *facts.FieldFact, *Reporter) error {
	return func(c *Context, old, new *facts.FieldFact, r *Reporter) error {
		if old != nil && new != nil && exposed(old.Access) && exposed(new.Access) {
			fn(c, old, new, r)
		}
		return nil
	}
}

func fieldAdded(c *Context, old, new *facts.FieldFact, r *Reporter) error {
	if old == nil && new != nil && exposed(new.Access) && !new.IsEnumConstant() {
		r.Report(fieldEvent(c, FieldAdded, nil, new))
	}
	return nil
}

// fieldHidesAncestor flags a new field that hides an inherited one in a way
// that breaks code compiled against the ancestor's field.
func fieldHidesAncestor(c *Context, old, new *facts.FieldFact, r *Reporter) error {
	if old != nil || new == nil || !exposed(new.Access) || new.IsEnumConstant() {
		return nil
	}
	ancestors, err := c.NewAncestors()
	if err != nil {
		return err
	}
	inherited, ok := registry.NearestField(ancestors, new.Name)
	if !ok || !exposed(inherited.Access) {
		return nil
	}
	if inherited.IsStatic() != new.IsStatic() {
		ev := fieldEvent(c, FieldStaticMismatchAncestor, nil, new)
		ev.Detail = "hides " + inherited.String()
		r.Report(ev)
	}
	if c.Order.Less(new.Access, inherited.Access) {
		ev := fieldEvent(c, FieldLessAccessibleAncestor, nil, new)
		ev.Detail = new.Access.String() + " hides " + inherited.Access.String() + " " + inherited.String()
		r.Report(ev)
	}
	return nil
}

// fieldRemoved distinguishes a field still reachable through a superclass
// with the same name and type from one that is gone.
func fieldRemoved(c *Context, old, new *facts.FieldFact, r *Reporter) error {
	if old == nil || new != nil || !exposed(old.Access) || old.IsEnumConstant() {
		return nil
	}
	ancestors, err := c.NewAncestors()
	if err != nil {
		return err
	}
	if inherited, ok := registry.NearestFieldOfType(ancestors, old.Name, old.Descriptor); ok && exposed(inherited.Access) {
		ev := fieldEvent(c, FieldMovedToSuperclass, old, nil)
		ev.Detail = "now declared by " + inherited.Owner.Qualified()
		r.Report(ev)
		return nil
	}
	r.Report(fieldEvent(c, FieldRemoved, old, nil))
	return nil
}

func fieldAccessibility(c *Context, old, new *facts.FieldFact, r *Reporter) error {
	if old == nil || new == nil || (!exposed(old.Access) && !exposed(new.Access)) {
		return nil
	}
	var k *Kind
	switch d := c.accessibilityDelta(old.Access, new.Access); {
	case d > 0:
		k = FieldMoreAccessible
	case d < 0:
		k = FieldLessAccessible
	default:
		return nil
	}
	ev := fieldEvent(c, k, old, new)
	ev.Detail = old.Access.String() + " -> " + new.Access.String()
	r.Report(ev)
	return nil
}

func flipField(c *Context, r *Reporter, old, new *facts.FieldFact, m facts.Modifier, now, noLonger *Kind) {
	was, is := old.Modifiers.Has(m), new.Modifiers.Has(m)
	switch {
	case !was && is:
		r.Report(fieldEvent(c, now, old, new))
	case was && !is:
		r.Report(fieldEvent(c, noLonger, old, new))
	}
}

func fieldEvent(c *Context, k *Kind, old, new *facts.FieldFact) Event {
	f := new
	if f == nil {
		f = old
	}
	return Event{
		Kind:    k,
		Module:  c.moduleName(),
		Class:   f.Owner,
		Subject: f.Owner.Qualified() + "." + f.Name,
		Old:     stringer(old),
		New:     stringer(new),
	}
}
