package diff

import (
	"modcompat/internal/modversion"
)

// Category groups event kinds by the element they describe.
type Category string

const (
	CategoryModule      Category = "MODULE"
	CategoryClass       Category = "CLASS"
	CategoryField       Category = "FIELD"
	CategoryMethod      Category = "METHOD"
	CategoryConstructor Category = "CONSTRUCTOR"
	CategoryEnum        Category = "ENUM"
)

// Kind is a change type with a fixed compatibility classification. Every
// event of a kind shares these values; they are never computed per event.
type Kind struct {
	Name        string
	Category    Category
	Binary      bool // pre-existing compiled consumers still link and run
	Source      bool // pre-existing consumer sources still compile
	Semver      modversion.Bump
	Description string
}

func (k *Kind) String() string { return k.Name }

const (
	major = modversion.BumpMajor
	minor = modversion.BumpMinor
	none  = modversion.BumpNone
)

func kind(name string, cat Category, binary, source bool, semver modversion.Bump, desc string) *Kind {
	k := &Kind{Name: name, Category: cat, Binary: binary, Source: source, Semver: semver, Description: desc}
	allKinds = append(allKinds, k)
	return k
}

var allKinds []*Kind

// Kinds returns every declared kind in declaration order.
func Kinds() []*Kind { return append([]*Kind(nil), allKinds...) }

// KindByName finds a declared kind.
func KindByName(name string) (*Kind, bool) {
	for _, k := range allKinds {
		if k.Name == name {
			return k, true
		}
	}
	return nil, false
}

// Module directives.
var (
	ExportAdded                 = kind("MODULE_EXPORT_ADDED", CategoryModule, true, true, minor, "package is now exported")
	ExportRemoved               = kind("MODULE_EXPORT_REMOVED", CategoryModule, false, false, major, "package is no longer exported")
	QualifiedExportAdded        = kind("MODULE_QUALIFIED_EXPORT_ADDED", CategoryModule, true, true, minor, "package is now exported to named modules")
	QualifiedExportRemoved      = kind("MODULE_QUALIFIED_EXPORT_REMOVED", CategoryModule, false, false, major, "package is no longer exported to named modules")
	QualifiedExportTargetsAdded = kind("MODULE_QUALIFIED_EXPORT_TARGETS_ADDED", CategoryModule, true, true, minor, "qualified export reaches more modules")
	QualifiedExportTargetsGone  = kind("MODULE_QUALIFIED_EXPORT_TARGETS_REMOVED", CategoryModule, false, false, major, "qualified export reaches fewer modules")
	OpenAdded                   = kind("MODULE_OPEN_ADDED", CategoryModule, true, true, minor, "package is now open for deep reflection")
	OpenRemoved                 = kind("MODULE_OPEN_REMOVED", CategoryModule, true, true, major, "package is no longer open for deep reflection")
	QualifiedOpenAdded          = kind("MODULE_QUALIFIED_OPEN_ADDED", CategoryModule, true, true, minor, "package is now open to named modules")
	QualifiedOpenRemoved        = kind("MODULE_QUALIFIED_OPEN_REMOVED", CategoryModule, true, true, major, "package is no longer open to named modules")
	QualifiedOpenTargetsAdded   = kind("MODULE_QUALIFIED_OPEN_TARGETS_ADDED", CategoryModule, true, true, minor, "qualified open reaches more modules")
	QualifiedOpenTargetsGone    = kind("MODULE_QUALIFIED_OPEN_TARGETS_REMOVED", CategoryModule, true, true, major, "qualified open reaches fewer modules")
	RequiresAdded               = kind("MODULE_REQUIRES_ADDED", CategoryModule, true, true, minor, "module requires a new dependency")
	RequiresRemoved             = kind("MODULE_REQUIRES_REMOVED", CategoryModule, true, true, none, "module no longer requires a dependency")
	RequiresTransitiveRemoved   = kind("MODULE_REQUIRES_TRANSITIVE_REMOVED", CategoryModule, false, false, major, "transitive dependency removed; consumers lose implied readability")
	RequiresNowTransitive       = kind("MODULE_REQUIRES_NOW_TRANSITIVE", CategoryModule, true, true, minor, "dependency is now transitive")
	RequiresNoLongerTransitive  = kind("MODULE_REQUIRES_NO_LONGER_TRANSITIVE", CategoryModule, false, false, major, "dependency is no longer transitive")
	ProvidesAdded               = kind("MODULE_PROVIDES_ADDED", CategoryModule, true, true, minor, "service providers added")
	ProvidesRemoved             = kind("MODULE_PROVIDES_REMOVED", CategoryModule, true, true, major, "service providers removed")
)

// Classes.
var (
	ClassAdded             = kind("CLASS_ADDED", CategoryClass, true, true, minor, "class added")
	ClassRemoved           = kind("CLASS_REMOVED", CategoryClass, false, false, major, "class removed")
	ClassNowAbstract       = kind("CLASS_NOW_ABSTRACT", CategoryClass, false, false, major, "class is now abstract")
	ClassNoLongerAbstract  = kind("CLASS_NO_LONGER_ABSTRACT", CategoryClass, true, true, minor, "class is no longer abstract")
	ClassNowFinal          = kind("CLASS_NOW_FINAL", CategoryClass, false, false, major, "class is now final")
	ClassNoLongerFinal     = kind("CLASS_NO_LONGER_FINAL", CategoryClass, true, true, minor, "class is no longer final")
	ClassNowInterface      = kind("CLASS_NOW_INTERFACE", CategoryClass, false, false, major, "class became an interface")
	ClassNoLongerInterface = kind("CLASS_NO_LONGER_INTERFACE", CategoryClass, false, false, major, "interface became a class")
	ClassNowEnum           = kind("CLASS_NOW_ENUM", CategoryClass, false, false, major, "class became an enum")
	ClassNoLongerEnum      = kind("CLASS_NO_LONGER_ENUM", CategoryClass, false, false, major, "enum became a class")
	BytecodeVersionRaised  = kind("CLASS_BYTECODE_VERSION_RAISED", CategoryClass, false, true, major, "class file version raised; older runtimes reject it")
	BytecodeVersionLowered = kind("CLASS_BYTECODE_VERSION_LOWERED", CategoryClass, true, true, none, "class file version lowered")
	GenericsAdded          = kind("CLASS_GENERICS_ADDED", CategoryClass, true, true, minor, "class declares type parameters")
	GenericsRemoved        = kind("CLASS_GENERICS_REMOVED", CategoryClass, true, false, major, "class no longer declares type parameters")
	GenericsChanged        = kind("CLASS_GENERICS_CHANGED", CategoryClass, true, false, major, "type parameters changed")
	InterfaceAdded         = kind("CLASS_INTERFACE_ADDED", CategoryClass, true, true, minor, "class implements a new interface")
	InterfaceRemoved       = kind("CLASS_INTERFACE_REMOVED", CategoryClass, false, false, major, "class no longer implements an interface")
	SuperclassAdded        = kind("CLASS_SUPERCLASS_ADDED", CategoryClass, true, true, minor, "class gained an ancestor")
	SuperclassRemoved      = kind("CLASS_SUPERCLASS_REMOVED", CategoryClass, false, false, major, "class lost an ancestor")
)

// Fields.
var (
	FieldAdded                  = kind("FIELD_ADDED", CategoryField, true, true, minor, "field added")
	FieldRemoved                = kind("FIELD_REMOVED", CategoryField, false, false, major, "field removed")
	FieldMovedToSuperclass      = kind("FIELD_MOVED_TO_SUPERCLASS", CategoryField, true, true, none, "field removed but still inherited from a superclass")
	FieldStaticMismatchAncestor = kind("FIELD_STATIC_MISMATCH_WITH_ANCESTOR", CategoryField, false, true, major, "new field hides an inherited field of different static-ness")
	FieldLessAccessibleAncestor = kind("FIELD_LESS_ACCESSIBLE_THAN_ANCESTOR", CategoryField, false, false, major, "new field hides an inherited field with weaker access")
	FieldMoreAccessible         = kind("FIELD_MORE_ACCESSIBLE", CategoryField, true, true, minor, "field is more accessible")
	FieldLessAccessible         = kind("FIELD_LESS_ACCESSIBLE", CategoryField, false, false, major, "field is less accessible")
	FieldNowFinal               = kind("FIELD_NOW_FINAL", CategoryField, false, false, major, "field is now final")
	FieldNoLongerFinal          = kind("FIELD_NO_LONGER_FINAL", CategoryField, true, true, minor, "field is no longer final")
	FieldNowStatic              = kind("FIELD_NOW_STATIC", CategoryField, false, true, major, "field is now static")
	FieldNoLongerStatic         = kind("FIELD_NO_LONGER_STATIC", CategoryField, false, false, major, "field is no longer static")
	FieldTypeChanged            = kind("FIELD_TYPE_CHANGED", CategoryField, false, false, major, "field type changed")
	FieldTransientChanged       = kind("FIELD_TRANSIENT_CHANGED", CategoryField, true, true, none, "field transient flag changed")
	FieldVolatileChanged        = kind("FIELD_VOLATILE_CHANGED", CategoryField, true, true, none, "field volatile flag changed")
)

// Methods.
var (
	MethodAdded                    = kind("METHOD_ADDED", CategoryMethod, true, true, minor, "method added")
	MethodOverloadAdded            = kind("METHOD_OVERLOAD_ADDED", CategoryMethod, true, false, minor, "method overload added")
	MethodRemoved                  = kind("METHOD_REMOVED", CategoryMethod, false, false, major, "method removed")
	MethodMovedToSuperclass        = kind("METHOD_MOVED_TO_SUPERCLASS", CategoryMethod, true, true, none, "method removed but still inherited from a superclass")
	MethodStaticMismatchAncestor   = kind("METHOD_STATIC_MISMATCH_WITH_ANCESTOR", CategoryMethod, false, false, major, "new method conflicts with an inherited method of different static-ness")
	MethodLessAccessibleAncestor   = kind("METHOD_LESS_ACCESSIBLE_THAN_ANCESTOR", CategoryMethod, false, false, major, "new method overrides an inherited method with weaker access")
	InterfaceAbstractMethodAdded   = kind("METHOD_ABSTRACT_ADDED_TO_INTERFACE", CategoryMethod, true, false, major, "abstract method added to interface")
	InterfaceDefaultMethodAdded    = kind("METHOD_DEFAULT_ADDED_TO_INTERFACE", CategoryMethod, true, true, minor, "default method added to interface")
	InterfaceStaticMethodAdded     = kind("METHOD_STATIC_ADDED_TO_INTERFACE", CategoryMethod, true, true, minor, "static method added to interface")
	InterfaceAbstractMethodRemoved = kind("METHOD_ABSTRACT_REMOVED_FROM_INTERFACE", CategoryMethod, false, false, major, "abstract method removed from interface")
	InterfaceDefaultMethodRemoved  = kind("METHOD_DEFAULT_REMOVED_FROM_INTERFACE", CategoryMethod, false, false, major, "default method removed from interface")
	InterfaceStaticMethodRemoved   = kind("METHOD_STATIC_REMOVED_FROM_INTERFACE", CategoryMethod, false, false, major, "static method removed from interface")
	MethodNowFinal                 = kind("METHOD_NOW_FINAL", CategoryMethod, false, false, major, "method is now final")
	MethodNoLongerFinal            = kind("METHOD_NO_LONGER_FINAL", CategoryMethod, true, true, minor, "method is no longer final")
	MethodNowStatic                = kind("METHOD_NOW_STATIC", CategoryMethod, false, false, major, "method is now static")
	MethodNoLongerStatic           = kind("METHOD_NO_LONGER_STATIC", CategoryMethod, false, false, major, "method is no longer static")
	MethodNowAbstract              = kind("METHOD_NOW_ABSTRACT", CategoryMethod, false, false, major, "method is now abstract")
	MethodNoLongerAbstract         = kind("METHOD_NO_LONGER_ABSTRACT", CategoryMethod, true, true, minor, "method is no longer abstract")
	MethodNowVarargs               = kind("METHOD_NOW_VARARGS", CategoryMethod, true, true, minor, "method is now variadic")
	MethodNoLongerVarargs          = kind("METHOD_NO_LONGER_VARARGS", CategoryMethod, true, false, major, "method is no longer variadic")
	MethodExceptionsChanged        = kind("METHOD_EXCEPTIONS_CHANGED", CategoryMethod, true, false, major, "declared exceptions changed")
	MethodSynchronizedChanged      = kind("METHOD_SYNCHRONIZED_CHANGED", CategoryMethod, true, true, none, "method synchronized flag changed")
	MethodMoreAccessible           = kind("METHOD_MORE_ACCESSIBLE", CategoryMethod, true, true, minor, "method is more accessible")
	MethodLessAccessible           = kind("METHOD_LESS_ACCESSIBLE", CategoryMethod, false, false, major, "method is less accessible")
)

// Constructors.
var (
	ConstructorAdded             = kind("CONSTRUCTOR_ADDED", CategoryConstructor, true, true, minor, "constructor added")
	ConstructorOverloadAdded     = kind("CONSTRUCTOR_OVERLOAD_ADDED", CategoryConstructor, true, true, minor, "constructor overload added")
	ConstructorRemoved           = kind("CONSTRUCTOR_REMOVED", CategoryConstructor, false, false, major, "constructor removed")
	ConstructorMoreAccessible    = kind("CONSTRUCTOR_MORE_ACCESSIBLE", CategoryConstructor, true, true, minor, "constructor is more accessible")
	ConstructorLessAccessible    = kind("CONSTRUCTOR_LESS_ACCESSIBLE", CategoryConstructor, false, false, major, "constructor is less accessible")
	ConstructorNowVarargs        = kind("CONSTRUCTOR_NOW_VARARGS", CategoryConstructor, true, true, minor, "constructor is now variadic")
	ConstructorNoLongerVarargs   = kind("CONSTRUCTOR_NO_LONGER_VARARGS", CategoryConstructor, true, false, major, "constructor is no longer variadic")
	ConstructorExceptionsChanged = kind("CONSTRUCTOR_EXCEPTIONS_CHANGED", CategoryConstructor, true, false, major, "constructor declared exceptions changed")
)

// Enum constants.
var (
	EnumConstantsAdded   = kind("ENUM_CONSTANTS_ADDED", CategoryEnum, true, true, minor, "enum constants added")
	EnumConstantsRemoved = kind("ENUM_CONSTANTS_REMOVED", CategoryEnum, false, false, major, "enum constants removed")
)
