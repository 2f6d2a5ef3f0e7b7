package extract

// builtinTypes are always resolvable without cross-module lookup and are
// never recorded as occurrences.
var builtinTypes = map[string]bool{
	"Bool":      true,
	"Int":       true,
	"Int8":      true,
	"Int16":     true,
	"Int32":     true,
	"Int64":     true,
	"UInt":      true,
	"UInt8":     true,
	"UInt16":    true,
	"UInt32":    true,
	"UInt64":    true,
	"Float":     true,
	"Double":    true,
	"String":    true,
	"Character": true,
	"Any":       true,
	"AnyObject": true,
	"Void":      true,
	"Never":     true,
	"Self":      true,
}

// IsBuiltinType reports whether name is on the builtin allow-list.
func IsBuiltinType(name string) bool {
	return builtinTypes[name]
}
