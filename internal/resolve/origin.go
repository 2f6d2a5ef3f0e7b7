package resolve

import "swiftsight/internal/extract"

// OriginKind says which kind of place supplies a symbol's definition.
type OriginKind int

const (
	OriginUnknown OriginKind = iota
	OriginExternal
	OriginInternal
	OriginSystem
)

func (k OriginKind) String() string {
	switch k {
	case OriginExternal:
		return "external"
	case OriginInternal:
		return "internal"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Origin is the resolved module origin of one usage. Module is set only for
// OriginExternal.
type Origin struct {
	Kind   OriginKind
	Module string
}

// Resolution pairs a usage with its best-effort origin judgment. Unknown is
// an expected outcome, never an error.
type Resolution struct {
	Occurrence extract.Occurrence
	Origin     Origin
	DefKind    extract.DefinitionKind
}
