package diff

import (
	"sort"

	"modcompat/internal/facts"
)

type directiveKinds struct {
	added, removed                   *Kind
	qualifiedAdded, qualifiedRemoved *Kind
	targetsAdded, targetsRemoved     *Kind
}

var (
	exportKinds = directiveKinds{
		ExportAdded, ExportRemoved,
		QualifiedExportAdded, QualifiedExportRemoved,
		QualifiedExportTargetsAdded, QualifiedExportTargetsGone,
	}
	openKinds = directiveKinds{
		OpenAdded, OpenRemoved,
		QualifiedOpenAdded, QualifiedOpenRemoved,
		QualifiedOpenTargetsAdded, QualifiedOpenTargetsGone,
	}
)

func moduleRules() []Rule[*facts.ModuleDescriptor] {
	return []Rule[*facts.ModuleDescriptor]{
		newRule("ModuleExports", []string{"JLS 7.7.2 Exported and Opened Packages"},
			func(c *Context, old, new *facts.ModuleDescriptor, r *Reporter) error {
				diffDirective(c, r, old, new, old.Exports, new.Exports, old.QualifiedExports, new.QualifiedExports, exportKinds)
				return nil
			}),
		newRule("ModuleOpens", []string{"JLS 7.7.2 Exported and Opened Packages"},
			func(c *Context, old, new *facts.ModuleDescriptor, r *Reporter) error {
				diffDirective(c, r, old, new, old.Opens, new.Opens, old.QualifiedOpens, new.QualifiedOpens, openKinds)
				return nil
			}),
		newRule("ModuleRequires", []string{"JLS 7.7.1 Dependences"}, diffRequires),
		newRule("ModuleProvides", []string{"JLS 7.7.4 Service Provision"}, diffProvides),
	}
}

// diffDirective compares one exports-shaped directive. A qualified entry
// whose package is unqualified in the new version is folded into the
// unqualified event.
func diffDirective(c *Context, r *Reporter, old, new *facts.ModuleDescriptor,
	oldU, newU map[string]bool, oldQ, newQ map[string][]string, k directiveKinds) {
	for _, pkg := range unionKeys(oldU, newU) {
		switch {
		case newU[pkg] && !oldU[pkg]:
			r.Report(moduleEvent(c, k.added, old, new, pkg, nil))
		case oldU[pkg] && !newU[pkg]:
			r.Report(moduleEvent(c, k.removed, old, new, pkg, nil))
		}
	}

	for _, pkg := range unionKeys(oldQ, newQ) {
		if newU[pkg] {
			continue
		}
		was, inOld := oldQ[pkg]
		now, inNew := newQ[pkg]
		switch {
		case !inOld:
			r.Report(moduleEvent(c, k.qualifiedAdded, old, new, pkg, now))
		case !inNew:
			r.Report(moduleEvent(c, k.qualifiedRemoved, old, new, pkg, was))
		default:
			gained, lost := setDiff(was, now)
			if len(lost) > 0 {
				r.Report(moduleEvent(c, k.targetsRemoved, old, new, pkg, lost))
			}
			if len(gained) > 0 {
				r.Report(moduleEvent(c, k.targetsAdded, old, new, pkg, gained))
			}
		}
	}
}

func diffRequires(c *Context, old, new *facts.ModuleDescriptor, r *Reporter) error {
	for _, dep := range unionKeys(old.Requires, new.Requires) {
		wasTransitive, inOld := old.Requires[dep]
		isTransitive, inNew := new.Requires[dep]
		switch {
		case !inOld:
			ev := moduleEvent(c, RequiresAdded, old, new, dep, nil)
			if isTransitive {
				ev.Detail = "transitive"
			}
			r.Report(ev)
		case !inNew && wasTransitive:
			r.Report(moduleEvent(c, RequiresTransitiveRemoved, old, new, dep, nil))
		case !inNew:
			r.Report(moduleEvent(c, RequiresRemoved, old, new, dep, nil))
		case !wasTransitive && isTransitive:
			r.Report(moduleEvent(c, RequiresNowTransitive, old, new, dep, nil))
		case wasTransitive && !isTransitive:
			r.Report(moduleEvent(c, RequiresNoLongerTransitive, old, new, dep, nil))
		}
	}
	return nil
}

// diffProvides compares (service, provider) bindings, one event per service
// and direction.
func diffProvides(c *Context, old, new *facts.ModuleDescriptor, r *Reporter) error {
	for _, svc := range unionKeys(old.Provides, new.Provides) {
		gained, lost := setDiff(old.Provides[svc], new.Provides[svc])
		if len(lost) > 0 {
			r.Report(moduleEvent(c, ProvidesRemoved, old, new, svc, lost))
		}
		if len(gained) > 0 {
			r.Report(moduleEvent(c, ProvidesAdded, old, new, svc, gained))
		}
	}
	return nil
}

func moduleEvent(c *Context, k *Kind, old, new *facts.ModuleDescriptor, subject string, members []string) Event {
	return Event{
		Kind:    k,
		Module:  c.moduleName(),
		Subject: subject,
		Old:     stringer(old),
		New:     stringer(new),
		Members: members,
	}
}

func unionKeys[V any](a, b map[string]V) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	return facts.SortedKeys(seen)
}

// setDiff returns the sorted elements only in now (gained) and only in was
// (lost).
func setDiff(was, now []string) (gained, lost []string) {
	inWas := make(map[string]bool, len(was))
	for _, s := range was {
		inWas[s] = true
	}
	inNow := make(map[string]bool, len(now))
	for _, s := range now {
		inNow[s] = true
		if !inWas[s] {
			gained = append(gained, s)
		}
	}
	for _, s := range was {
		if !inNow[s] {
			lost = append(lost, s)
		}
	}
	sort.Strings(gained)
	sort.Strings(lost)
	return gained, lost
}
