// Package loader reads module snapshot manifests from disk.
//
// A manifest describes one version of a module: its module-info directives
// and the flat attributes of every class it contains. Manifests are TOML,
// YAML or JSON, optionally compressed with zstd or gzip.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modcompat/internal/errors"
)

// Manifest is the on-disk form of a module snapshot.
type Manifest struct {
	Module  ModuleEntry  `toml:"module" yaml:"module" json:"module"`
	Classes []ClassEntry `toml:"class" yaml:"class" json:"class"`
}

// ModuleEntry holds the module-info directives.
type ModuleEntry struct {
	Name             string           `toml:"name" yaml:"name" json:"name"`
	Version          string           `toml:"version,omitempty" yaml:"version,omitempty" json:"version,omitempty"`
	Exports          []string         `toml:"exports,omitempty" yaml:"exports,omitempty" json:"exports,omitempty"`
	QualifiedExports []QualifiedEntry `toml:"qualifiedExports,omitempty" yaml:"qualifiedExports,omitempty" json:"qualifiedExports,omitempty"`
	Opens            []string         `toml:"opens,omitempty" yaml:"opens,omitempty" json:"opens,omitempty"`
	QualifiedOpens   []QualifiedEntry `toml:"qualifiedOpens,omitempty" yaml:"qualifiedOpens,omitempty" json:"qualifiedOpens,omitempty"`
	Requires         []RequiresEntry  `toml:"requires,omitempty" yaml:"requires,omitempty" json:"requires,omitempty"`
	Provides         []ProvidesEntry  `toml:"provides,omitempty" yaml:"provides,omitempty" json:"provides,omitempty"`
}

// QualifiedEntry is an export or open restricted to named modules.
type QualifiedEntry struct {
	Package string   `toml:"package" yaml:"package" json:"package"`
	To      []string `toml:"to" yaml:"to" json:"to"`
}

// RequiresEntry is a module dependency.
type RequiresEntry struct {
	Name       string `toml:"name" yaml:"name" json:"name"`
	Transitive bool   `toml:"transitive,omitempty" yaml:"transitive,omitempty" json:"transitive,omitempty"`
}

// ProvidesEntry binds service providers to a service interface.
type ProvidesEntry struct {
	Service   string   `toml:"service" yaml:"service" json:"service"`
	Providers []string `toml:"providers" yaml:"providers" json:"providers"`
}

// ClassEntry holds the decoded attributes of one class file.
type ClassEntry struct {
	Package    string        `toml:"package" yaml:"package" json:"package"`
	Name       string        `toml:"name" yaml:"name" json:"name"`
	Access     string        `toml:"access,omitempty" yaml:"access,omitempty" json:"access,omitempty"`
	Modifiers  []string      `toml:"modifiers,omitempty" yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Version    int64         `toml:"version,omitempty" yaml:"version,omitempty" json:"version,omitempty"`
	Super      string        `toml:"super,omitempty" yaml:"super,omitempty" json:"super,omitempty"`
	Interfaces []string      `toml:"interfaces,omitempty" yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Signature  string        `toml:"signature,omitempty" yaml:"signature,omitempty" json:"signature,omitempty"`
	Fields     []FieldEntry  `toml:"field,omitempty" yaml:"field,omitempty" json:"field,omitempty"`
	Methods    []MethodEntry `toml:"method,omitempty" yaml:"method,omitempty" json:"method,omitempty"`
}

// FieldEntry is a declared field.
type FieldEntry struct {
	Name      string   `toml:"name" yaml:"name" json:"name"`
	Type      string   `toml:"type" yaml:"type" json:"type"`
	Access    string   `toml:"access,omitempty" yaml:"access,omitempty" json:"access,omitempty"`
	Modifiers []string `toml:"modifiers,omitempty" yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// MethodEntry is a declared method or constructor.
type MethodEntry struct {
	Name       string   `toml:"name" yaml:"name" json:"name"`
	Params     []string `toml:"params,omitempty" yaml:"params,omitempty" json:"params,omitempty"`
	Return     string   `toml:"return,omitempty" yaml:"return,omitempty" json:"return,omitempty"`
	Exceptions []string `toml:"exceptions,omitempty" yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
	Access     string   `toml:"access,omitempty" yaml:"access,omitempty" json:"access,omitempty"`
	Modifiers  []string `toml:"modifiers,omitempty" yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Compression is a manifest container.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zst"
	CompressionGzip Compression = "gz"
)

// DetectFormat infers the encoding and compression from a file name, e.g.
// "java.base.toml.zst".
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	comp := CompressionNone
	switch {
	case strings.HasSuffix(name, ".zst"):
		comp, name = CompressionZstd, strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".gz"):
		comp, name = CompressionGzip, strings.TrimSuffix(name, ".gz")
	}
	switch filepath.Ext(name) {
	case ".toml":
		return FormatTOML, comp, nil
	case ".yaml", ".yml":
		return FormatYAML, comp, nil
	case ".json":
		return FormatJSON, comp, nil
	}
	return "", comp, errors.Newf(errors.ManifestInvalid, "unrecognized manifest extension: %s", path)
}

// Decompress returns the plain manifest bytes.
func Decompress(data []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.New(errors.InternalError, "creating zstd decoder", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.New(errors.ManifestInvalid, "decompressing zstd manifest", err)
		}
		return out, nil
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New(errors.ManifestInvalid, "opening gzip manifest", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.New(errors.ManifestInvalid, "decompressing gzip manifest", err)
		}
		return out, nil
	}
	return nil, errors.Newf(errors.InternalError, "unknown compression %q", comp)
}

// Decode parses plain manifest bytes. Unknown keys are rejected.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&m)
		if err == io.EOF {
			err = nil
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	default:
		return nil, errors.Newf(errors.InternalError, "unknown manifest format %q", format)
	}
	if err != nil {
		return nil, errors.New(errors.ManifestInvalid, fmt.Sprintf("parsing %s manifest", format), err)
	}
	return &m, nil
}

// Encode renders m in the given format. Used to write fixtures and to export
// snapshots.
func Encode(m *Manifest, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(m)
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	}
	return nil, errors.Newf(errors.InternalError, "unknown manifest format %q", format)
}
