package report

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"modcompat/internal/diff"
	"modcompat/internal/errors"
)

// Suppression accepts known changes. Kind is a kind name or "*"; Subject is
// a path.Match pattern over the entry subject, empty for any subject. Note
// that "*" does not cross "/", which appears in member descriptors.
type Suppression struct {
	Kind    string `toml:"kind"`
	Subject string `toml:"subject"`
	Reason  string `toml:"reason"`
}

// Suppressions is a parsed suppression file:
//
//	[[accept]]
//	kind = "METHOD_REMOVED"
//	subject = "com.example.internal.*"
//	reason = "never documented"
type Suppressions struct {
	Accept []Suppression `toml:"accept"`

	mu   sync.Mutex
	hits []int
}

// LoadSuppressions reads a suppression file. Unknown keys and kinds are
// CONFIG_INVALID.
func LoadSuppressions(file string) (*Suppressions, error) {
	var s Suppressions
	md, err := toml.DecodeFile(file, &s)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "reading suppressions "+file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf(errors.ConfigInvalid, "suppressions %s: unknown keys %s", file, strings.Join(keys, ", "))
	}
	if err := s.validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "suppressions "+file, err)
	}
	return &s, nil
}

// ParseSuppressions decodes suppressions from TOML text.
func ParseSuppressions(data string) (*Suppressions, error) {
	var s Suppressions
	if _, err := toml.Decode(data, &s); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "parsing suppressions", err)
	}
	if err := s.validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "parsing suppressions", err)
	}
	return &s, nil
}

func (s *Suppressions) validate() error {
	for i, a := range s.Accept {
		if a.Kind == "" {
			return fmt.Errorf("accept[%d]: kind is required", i)
		}
		if a.Kind != "*" {
			if _, ok := diff.KindByName(a.Kind); !ok {
				return fmt.Errorf("accept[%d]: unknown kind %q", i, a.Kind)
			}
		}
		if _, err := path.Match(a.Subject, ""); err != nil {
			return fmt.Errorf("accept[%d]: subject %q: %w", i, a.Subject, err)
		}
	}
	s.hits = make([]int, len(s.Accept))
	return nil
}

// Match reports whether e is accepted. A nil receiver matches nothing.
func (s *Suppressions) Match(e Entry) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.Accept {
		if a.Kind != "*" && a.Kind != e.Kind {
			continue
		}
		if a.Subject != "" {
			if ok, _ := path.Match(a.Subject, e.Subject); !ok {
				continue
			}
		}
		if i < len(s.hits) {
			s.hits[i]++
		}
		return true
	}
	return false
}

// Unused returns the suppressions that have not matched anything yet.
func (s *Suppressions) Unused() []Suppression {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Suppression
	for i, a := range s.Accept {
		if i >= len(s.hits) || s.hits[i] == 0 {
			out = append(out, a)
		}
	}
	return out
}
