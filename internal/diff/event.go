package diff

import (
	"fmt"

	"modcompat/internal/facts"
	"modcompat/internal/modversion"
)

// Event is one detected change. Old or New is nil when the element was
// added or removed.
type Event struct {
	Kind *Kind
	// Module is the name of the new module.
	Module string
	// Class is the affected class; zero for module directive events.
	Class facts.ClassName
	// Subject identifies the changed element: a package, dependency or
	// service for module events, a member reference otherwise.
	Subject string
	Old     fmt.Stringer
	New     fmt.Stringer
	// Members lists names aggregated into the event: enum constants,
	// qualified targets, service providers.
	Members []string
	Detail  string
}

func (e Event) Category() Category      { return e.Kind.Category }
func (e Event) BinaryCompatible() bool  { return e.Kind.Binary }
func (e Event) SourceCompatible() bool  { return e.Kind.Source }
func (e Event) Semver() modversion.Bump { return e.Kind.Semver }

func (e Event) String() string {
	s := e.Kind.Name + " " + e.Subject
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

// Receiver is handed every event of a successful comparison.
type Receiver interface {
	OnChange(check Check, ev Event)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(check Check, ev Event)

func (f ReceiverFunc) OnChange(check Check, ev Event) { f(check, ev) }

// Recorded pairs an event with the check that produced it.
type Recorded struct {
	Check Check
	Event Event
}

// Recorder is a Receiver that keeps everything it is given.
type Recorder struct {
	Events []Recorded
}

func (r *Recorder) OnChange(check Check, ev Event) {
	r.Events = append(r.Events, Recorded{Check: check, Event: ev})
}

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k *Kind) []Event {
	var out []Event
	for _, rec := range r.Events {
		if rec.Event.Kind == k {
			out = append(out, rec.Event)
		}
	}
	return out
}

// stringer converts a possibly nil fact pointer to a nil-safe fmt.Stringer.
func stringer[T any, P interface {
	*T
	fmt.Stringer
}](p P) fmt.Stringer {
	if p == nil {
		return nil
	}
	return p
}
