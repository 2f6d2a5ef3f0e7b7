package extract

import (
	"fmt"
	"sort"
	"strings"
)

// DefinitionKind classifies what a definition occurrence declares.
type DefinitionKind int

const (
	DefUnknown DefinitionKind = iota
	DefClass                  // nominal reference type
	DefStruct                 // nominal value type
	DefEnum
	DefProtocol
	DefTypeAlias
	DefMacro
	DefAssociatedType
	DefActor // concurrency-isolated type
)

func (k DefinitionKind) String() string {
	switch k {
	case DefClass:
		return "class"
	case DefStruct:
		return "struct"
	case DefEnum:
		return "enum"
	case DefProtocol:
		return "protocol"
	case DefTypeAlias:
		return "typealias"
	case DefMacro:
		return "macro"
	case DefAssociatedType:
		return "associatedtype"
	case DefActor:
		return "actor"
	default:
		return "unknown"
	}
}

// OccurrenceKind distinguishes definitions from usages.
type OccurrenceKind int

const (
	OccUsage OccurrenceKind = iota
	OccDefinition
)

func (k OccurrenceKind) String() string {
	if k == OccDefinition {
		return "definition"
	}
	return "usage"
}

// Occurrence is one observed appearance of a name in source text.
type Occurrence struct {
	Name     string
	FullName string // dotted path when statically determinable, else ""
	Kind     OccurrenceKind
	DefKind  DefinitionKind // meaningful for definitions
	Line     int            // 1-based
	Col      int            // 1-based
	Scope    []string       // enclosing scope identifiers, outermost first

	// ImportQualified marks usages whose FullName was derived from an
	// explicit import; these always survive the local-resolvability filter.
	ImportQualified bool
}

// Key is the identity tuple. Two occurrences with equal keys are the same
// record; the extractor output collapses duplicates on it.
func (o Occurrence) Key() string {
	return fmt.Sprintf("%s|%s|%d|%d|%d|%s",
		o.Name, o.FullName, o.Kind, o.Line, o.Col, strings.Join(o.Scope, "."))
}

// OccurrenceSet holds occurrences with set semantics over Occurrence.Key.
type OccurrenceSet map[string]Occurrence

func NewOccurrenceSet() OccurrenceSet {
	return make(OccurrenceSet)
}

func (s OccurrenceSet) Add(o Occurrence) {
	s[o.Key()] = o
}

// Values returns the occurrences in a deterministic order.
func (s OccurrenceSet) Values() []Occurrence {
	out := make([]Occurrence, 0, len(s))
	for _, o := range s {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].Col != out[j].Col {
			return out[i].Col < out[j].Col
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Usages returns only the usage occurrences, deterministically ordered.
func (s OccurrenceSet) Usages() []Occurrence {
	var out []Occurrence
	for _, o := range s.Values() {
		if o.Kind == OccUsage {
			out = append(out, o)
		}
	}
	return out
}
