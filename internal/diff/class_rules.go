package diff

import (
	"fmt"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/signature"
)

func classRules() []Rule[*facts.ClassFact] {
	return []Rule[*facts.ClassFact]{
		newRule("ClassSet", []string{"JLS 13.4.1 Deleting a Class or Interface"}, classSet),
		newRule("ClassAbstract", []string{"JLS 13.4.1 abstract Classes"}, classAbstract),
		newRule("ClassFinal", []string{"JLS 13.4.2 final Classes"}, bothClasses(func(c *Context, old, new *facts.ClassFact, r *Reporter) {
			flipClass(c, r, old, new, facts.Final, ClassNowFinal, ClassNoLongerFinal)
		})),
		newRule("ClassInterface", []string{"JLS 13.4.1", "JLS 13.5 Evolution of Interfaces"}, bothClasses(func(c *Context, old, new *facts.ClassFact, r *Reporter) {
			flipClass(c, r, old, new, facts.Interface, ClassNowInterface, ClassNoLongerInterface)
		})),
		newRule("ClassBytecodeVersion", []string{"JVMS 4.1 The ClassFile Structure"}, bothClasses(classBytecode)),
		newRule("ClassEnum", []string{"JLS 13.4.26 Evolution of Enum Classes"}, bothClasses(func(c *Context, old, new *facts.ClassFact, r *Reporter) {
			flipClass(c, r, old, new, facts.Enum, ClassNowEnum, ClassNoLongerEnum)
		})),
		newRule("ClassGenerics", []string{"JLS 13.4.5 Class Type Parameters"}, classGenerics),
		newRule("ClassInterfaces", []string{"JLS 13.4.4 Superclasses and Superinterfaces"}, bothClasses(classInterfaces)),
		newRule("ClassAncestors", []string{"JLS 13.4.4 Superclasses and Superinterfaces"}, classAncestors),
		newRule("EnumConstants", []string{"JLS 13.4.26 Evolution of Enum Classes"}, enumConstants),
	}
}

// bothClasses adapts a rule that only applies to a class present on both
// sides and cannot fail.
func bothClasses(fn func(c *Context, old, new *facts.ClassFact, r *Reporter)) func(*Context, *facts.ClassFact, *facts.ClassFact, *Reporter) error {
	return func(c *Context, old, new *facts.ClassFact, r *Reporter) error {
		if old != nil && new != nil {
			fn(c, old, new, r)
		}
		return nil
	}
}

func classSet(c *Context, old, new *facts.ClassFact, r *Reporter) error {
	switch {
	case old == nil && new != nil:
		r.Report(classEvent(c, ClassAdded, nil, new))
	case old != nil && new == nil:
		r.Report(classEvent(c, ClassRemoved, old, nil))
	}
	return nil
}

// classAbstract ignores interfaces, which are always abstract.
func classAbstract(c *Context, old, new *facts.ClassFact, r *Reporter) error {
	if old == nil || new == nil || old.IsInterface() || new.IsInterface() {
		return nil
	}
	flipClass(c, r, old, new, facts.Abstract, ClassNowAbstract, ClassNoLongerAbstract)
	return nil
}

func flipClass(c *Context, r *Reporter, old, new *facts.ClassFact, m facts.Modifier, now, noLonger *Kind) {
	was, is := old.Modifiers.Has(m), new.Modifiers.Has(m)
	switch {
	case !was && is:
		r.Report(classEvent(c, now, old, new))
	case was && !is:
		r.Report(classEvent(c, noLonger, old, new))
	}
}

func classBytecode(c *Context, old, new *facts.ClassFact, r *Reporter) {
	var k *Kind
	switch {
	case new.BytecodeVersion > old.BytecodeVersion:
		k = BytecodeVersionRaised
	case new.BytecodeVersion < old.BytecodeVersion:
		k = BytecodeVersionLowered
	default:
		return
	}
	ev := classEvent(c, k, old, new)
	ev.Detail = fmt.Sprintf("%d -> %d", old.BytecodeVersion, new.BytecodeVersion)
	r.Report(ev)
}

// classGenerics compares declared type parameters up to renaming. A
// Signature attribute without type parameters counts as non-generic.
func classGenerics(c *Context, old, new *facts.ClassFact, r *Reporter) error {
	if old == nil || new == nil {
		return nil
	}
	oldSig, err := old.Signature()
	if err != nil {
		return err
	}
	newSig, err := new.Signature()
	if err != nil {
		return err
	}

	switch was, is := oldSig.IsGeneric(), newSig.IsGeneric(); {
	case !was && is:
		ev := classEvent(c, GenericsAdded, old, new)
		ev.Detail = typeParamsString(newSig.TypeParams)
		r.Report(ev)
	case was && !is:
		ev := classEvent(c, GenericsRemoved, old, new)
		ev.Detail = typeParamsString(oldSig.TypeParams)
		r.Report(ev)
	case was && is:
		same, err := signature.Equivalent(oldSig.TypeParams, newSig.TypeParams)
		if err != nil {
			return errors.New(errors.InvariantViolation, "type parameters of "+new.Name.Qualified(), err)
		}
		if !same {
			ev := classEvent(c, GenericsChanged, old, new)
			ev.Detail = typeParamsString(oldSig.TypeParams) + " -> " + typeParamsString(newSig.TypeParams)
			r.Report(ev)
		}
	}
	return nil
}

func typeParamsString(params []signature.TypeParameter) string {
	s := "<"
	for _, p := range params {
		s += p.String()
	}
	return s + ">"
}

func classInterfaces(c *Context, old, new *facts.ClassFact, r *Reporter) {
	gained, lost := setDiff(refNames(old.Interfaces), refNames(new.Interfaces))
	for _, name := range lost {
		ev := classEvent(c, InterfaceRemoved, old, new)
		ev.Detail = name
		r.Report(ev)
	}
	for _, name := range gained {
		ev := classEvent(c, InterfaceAdded, old, new)
		ev.Detail = name
		r.Report(ev)
	}
}

func refNames(refs []facts.TypeRef) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.Qualified()
	}
	return out
}

// classAncestors compares superclass chains, each resolved in its own
// registry. Interfaces have no superclass chain of their own.
func classAncestors(c *Context, old, new *facts.ClassFact, r *Reporter) error {
	if old == nil || new == nil || old.IsInterface() || new.IsInterface() {
		return nil
	}
	was, err := c.OldRegistry.AncestorNames(old)
	if err != nil {
		return err
	}
	is, err := c.NewRegistry.AncestorNames(new)
	if err != nil {
		return err
	}
	gained, lost := setDiff(was, is)
	for _, name := range lost {
		ev := classEvent(c, SuperclassRemoved, old, new)
		ev.Detail = name
		r.Report(ev)
	}
	for _, name := range gained {
		ev := classEvent(c, SuperclassAdded, old, new)
		ev.Detail = name
		r.Report(ev)
	}
	return nil
}

// enumConstants reports added and removed constants of an enum present on
// both sides, one aggregate event per direction.
func enumConstants(c *Context, old, new *facts.ClassFact, r *Reporter) error {
	if old == nil || new == nil || !old.IsEnum() || !new.IsEnum() {
		return nil
	}
	was, err := facts.NewEnumFact(old)
	if err != nil {
		return err
	}
	is, err := facts.NewEnumFact(new)
	if err != nil {
		return err
	}
	gained, lost := setDiff(was.Names(), is.Names())
	if len(gained) > 0 {
		r.Report(enumEvent(c, EnumConstantsAdded, was, is, gained))
	}
	if len(lost) > 0 {
		r.Report(enumEvent(c, EnumConstantsRemoved, was, is, lost))
	}
	return nil
}

func classEvent(c *Context, k *Kind, old, new *facts.ClassFact) Event {
	ev := Event{Kind: k, Module: c.moduleName(), Old: stringer(old), New: stringer(new)}
	switch {
	case new != nil:
		ev.Class = new.Name
	case old != nil:
		ev.Class = old.Name
	}
	ev.Subject = ev.Class.Qualified()
	return ev
}

func enumEvent(c *Context, k *Kind, old, new *facts.EnumFact, members []string) Event {
	return Event{
		Kind:    k,
		Module:  c.moduleName(),
		Class:   new.Class.Name,
		Subject: new.Class.Name.Qualified(),
		Old:     old,
		New:     new,
		Members: members,
	}
}
