package loader

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/modversion"
)

// moduleDescriptor decodes the module section.
func moduleDescriptor(e ModuleEntry) (*facts.ModuleDescriptor, error) {
	if !validQualifiedName(e.Name) {
		return nil, invalid("module name %q", e.Name)
	}
	d := facts.NewModuleDescriptor(e.Name)
	if e.Version != "" {
		v, err := modversion.Parse(e.Version)
		if err != nil {
			return nil, errors.New(errors.ManifestInvalid, "module "+e.Name+" version", err)
		}
		d.Version = v
	}

	for _, p := range e.Exports {
		if !validQualifiedName(p) {
			return nil, invalid("exported package %q", p)
		}
		d.Export(p)
	}
	for _, q := range e.QualifiedExports {
		if err := validQualified(q); err != nil {
			return nil, err
		}
		d.ExportTo(q.Package, q.To...)
	}
	for _, p := range e.Opens {
		if !validQualifiedName(p) {
			return nil, invalid("opened package %q", p)
		}
		d.Open(p)
	}
	for _, q := range e.QualifiedOpens {
		if err := validQualified(q); err != nil {
			return nil, err
		}
		d.OpenTo(q.Package, q.To...)
	}
	for _, r := range e.Requires {
		if !validQualifiedName(r.Name) {
			return nil, invalid("required module %q", r.Name)
		}
		d.Require(r.Name, r.Transitive)
	}
	for _, p := range e.Provides {
		if !validQualifiedName(p.Service) || len(p.Providers) == 0 {
			return nil, invalid("provides %q needs a service and at least one provider", p.Service)
		}
		for _, impl := range p.Providers {
			if !validQualifiedName(impl) {
				return nil, invalid("provider %q of %s", impl, p.Service)
			}
		}
		d.Provide(p.Service, p.Providers...)
	}
	return d, nil
}

func validQualified(q QualifiedEntry) error {
	if !validQualifiedName(q.Package) || len(q.To) == 0 {
		return invalid("qualified entry %q needs a package and at least one target", q.Package)
	}
	for _, t := range q.To {
		if !validQualifiedName(t) {
			return invalid("target module %q of %s", t, q.Package)
		}
	}
	return nil
}

// classFact decodes one class entry of module.
func classFact(module string, e *ClassEntry) (*facts.ClassFact, error) {
	where := e.Package + "." + e.Name
	if e.Package == "" || !validQualifiedName(e.Package) || !validIdentifier(e.Name) {
		return nil, invalid("class name %q", where)
	}
	access, err := facts.ParseAccess(e.Access)
	if err != nil {
		return nil, errors.New(errors.ManifestInvalid, "class "+where, err)
	}
	mods, err := facts.ParseModifiers(e.Modifiers)
	if err != nil {
		return nil, errors.New(errors.ManifestInvalid, "class "+where, err)
	}
	version, err := safecast.Conv[uint16](e.Version)
	if err != nil {
		return nil, errors.New(errors.ManifestInvalid, fmt.Sprintf("class %s bytecode version %d", where, e.Version), err)
	}

	spec := facts.ClassSpec{
		Name:            facts.ClassName{Module: module, Package: e.Package, Name: e.Name},
		Modifiers:       mods,
		Access:          access,
		BytecodeVersion: version,
		RawSignature:    e.Signature,
		Raw:             e,
	}
	if e.Super != "" {
		if !validQualifiedName(e.Super) {
			return nil, invalid("superclass %q of %s", e.Super, where)
		}
		ref := facts.ParseTypeRef(e.Super)
		spec.Superclass = &ref
	}
	for _, i := range e.Interfaces {
		if !validQualifiedName(i) {
			return nil, invalid("interface %q of %s", i, where)
		}
		spec.Interfaces = append(spec.Interfaces, facts.ParseTypeRef(i))
	}

	for _, f := range e.Fields {
		fs, err := fieldSpec(where, f)
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, fs)
	}
	for _, m := range e.Methods {
		ms, err := methodSpec(where, m)
		if err != nil {
			return nil, err
		}
		spec.Methods = append(spec.Methods, ms)
	}

	c, err := facts.NewClassFact(spec)
	if err != nil {
		return nil, errors.New(errors.ManifestInvalid, "class "+where, err)
	}
	return c, nil
}

func fieldSpec(owner string, f FieldEntry) (facts.FieldSpec, error) {
	where := owner + "." + f.Name
	if !validIdentifier(f.Name) {
		return facts.FieldSpec{}, invalid("field name %q", where)
	}
	if !validDescriptor(f.Type, false) {
		return facts.FieldSpec{}, invalid("field %s type %q", where, f.Type)
	}
	access, err := facts.ParseAccess(f.Access)
	if err != nil {
		return facts.FieldSpec{}, errors.New(errors.ManifestInvalid, "field "+where, err)
	}
	mods, err := facts.ParseModifiers(f.Modifiers)
	if err != nil {
		return facts.FieldSpec{}, errors.New(errors.ManifestInvalid, "field "+where, err)
	}
	return facts.FieldSpec{Name: f.Name, Descriptor: f.Type, Modifiers: mods, Access: access}, nil
}

func methodSpec(owner string, m MethodEntry) (facts.MethodSpec, error) {
	where := owner + "#" + m.Name
	if m.Name != facts.ConstructorName && m.Name != facts.StaticInitializerName && !validIdentifier(m.Name) {
		return facts.MethodSpec{}, invalid("method name %q", where)
	}
	ret := m.Return
	if ret == "" {
		ret = "V"
	}
	if !validDescriptor(ret, true) {
		return facts.MethodSpec{}, invalid("method %s return type %q", where, ret)
	}
	for _, p := range m.Params {
		if !validDescriptor(p, false) {
			return facts.MethodSpec{}, invalid("method %s parameter %q", where, p)
		}
	}
	for _, x := range m.Exceptions {
		if !validInternalName(x) {
			return facts.MethodSpec{}, invalid("method %s exception %q", where, x)
		}
	}
	access, err := facts.ParseAccess(m.Access)
	if err != nil {
		return facts.MethodSpec{}, errors.New(errors.ManifestInvalid, "method "+where, err)
	}
	mods, err := facts.ParseModifiers(m.Modifiers)
	if err != nil {
		return facts.MethodSpec{}, errors.New(errors.ManifestInvalid, "method "+where, err)
	}
	return facts.MethodSpec{
		Name:       m.Name,
		Params:     m.Params,
		Return:     ret,
		Exceptions: m.Exceptions,
		Modifiers:  mods,
		Access:     access,
	}, nil
}

func invalid(format string, args ...any) error {
	return errors.Newf(errors.ManifestInvalid, "invalid "+format, args...)
}

// validDescriptor checks a JVM field descriptor; void is allowed only for
// return types.
func validDescriptor(d string, allowVoid bool) bool {
	if allowVoid && d == "V" {
		return true
	}
	i := 0
	for i < len(d) && d[i] == '[' {
		i++
	}
	if i > 255 || i >= len(d) {
		return false
	}
	rest := d[i:]
	switch rest[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return len(rest) == 1
	case 'L':
		return strings.HasSuffix(rest, ";") && validInternalName(rest[1:len(rest)-1])
	}
	return false
}

// validInternalName checks a slash-separated binary class name.
func validInternalName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, "/") {
		if !validIdentifier(part) {
			return false
		}
	}
	return true
}

// validQualifiedName checks a dot-separated name.
func validQualifiedName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !validIdentifier(part) {
			return false
		}
	}
	return true
}

// validIdentifier rejects empty names and the characters the class file
// format reserves in unqualified names.
func validIdentifier(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".;[/<>")
}
