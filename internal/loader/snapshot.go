package loader

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
)

// Snapshot is a module snapshot backed by a manifest. Class facts are
// materialized on each Class call; wrap it in registry.Cached to memoize.
type Snapshot struct {
	path       string
	digest     string
	descriptor *facts.ModuleDescriptor
	entries    map[string]map[string]*ClassEntry
}

// Open reads, decompresses and validates the manifest at path.
func Open(path string) (*Snapshot, error) {
	format, comp, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ResolutionIO, "reading manifest "+path, err)
	}
	data, err := Decompress(raw, comp)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	s, err := FromManifest(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	s.digest = digest(data)
	return s, nil
}

// FromManifest builds a snapshot from an already decoded manifest. Every
// class is validated eagerly so that later lookups cannot fail. The digest
// covers the JSON encoding of m.
func FromManifest(m *Manifest) (*Snapshot, error) {
	d, err := moduleDescriptor(m.Module)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		descriptor: d,
		entries:    make(map[string]map[string]*ClassEntry),
	}
	for i := range m.Classes {
		e := &m.Classes[i]
		if _, err := classFact(d.Name, e); err != nil {
			return nil, err
		}
		byName, ok := s.entries[e.Package]
		if !ok {
			byName = make(map[string]*ClassEntry)
			s.entries[e.Package] = byName
		}
		if _, dup := byName[e.Name]; dup {
			return nil, invalid("class %s.%s declared twice", e.Package, e.Name)
		}
		byName[e.Name] = e
	}
	if data, err := json.Marshal(m); err == nil {
		s.digest = digest(data)
	}
	return s, nil
}

// Path returns the manifest path, empty for in-memory manifests.
func (s *Snapshot) Path() string { return s.path }

// Digest is the BLAKE2b-256 fingerprint of the uncompressed manifest.
func (s *Snapshot) Digest() string { return s.digest }

func (s *Snapshot) Descriptor() *facts.ModuleDescriptor { return s.descriptor }

func (s *Snapshot) Packages() []string {
	set := make(map[string]bool, len(s.entries))
	for p := range s.entries {
		set[p] = true
	}
	for _, p := range s.descriptor.ExportedPackages() {
		set[p] = true
	}
	return facts.SortedKeys(set)
}

func (s *Snapshot) ClassNames(pkg string) ([]string, error) {
	names := make([]string, 0, len(s.entries[pkg]))
	for n := range s.entries[pkg] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Class materializes pkg.name. The returned fact's Raw is the manifest entry.
func (s *Snapshot) Class(pkg, name string) (*facts.ClassFact, bool, error) {
	e, ok := s.entries[pkg][name]
	if !ok {
		return nil, false, nil
	}
	c, err := classFact(s.descriptor.Name, e)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return "blake2b:" + hex.EncodeToString(sum[:])
}

// manifestExtensions are tried in order when looking a module up by name.
var manifestExtensions = []string{
	".toml", ".yaml", ".yml", ".json",
	".toml.zst", ".yaml.zst", ".json.zst",
	".toml.gz", ".yaml.gz", ".json.gz",
}

// FindPlatform returns the first manifest for module name on searchPaths.
func FindPlatform(name string, searchPaths []string) (string, bool) {
	for _, dir := range searchPaths {
		for _, ext := range manifestExtensions {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// OpenPlatform opens the platform module name, such as java.base, from the
// first search path that has a manifest for it.
func OpenPlatform(name string, searchPaths []string) (*Snapshot, error) {
	path, ok := FindPlatform(name, searchPaths)
	if !ok {
		return nil, errors.Newf(errors.ResolutionIO,
			"platform module %s not found in [%s]", name, strings.Join(searchPaths, ", "))
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if got := s.Descriptor().Name; got != name {
		return nil, invalid("manifest %s declares module %s, expected %s", path, got, name)
	}
	return s, nil
}
