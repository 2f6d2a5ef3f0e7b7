// Package index provides the global program index: a process-lifetime,
// prewarm-once, read-many store of canonical symbol definitions across all
// build units of a program.
package index

import (
	"context"

	"swiftsight/internal/extract"
)

// Hit is one canonical definition matched by exact name.
type Hit struct {
	Name   string
	Module string // owning module
	Kind   extract.DefinitionKind
	USR    string // stable identity, used for deduplication
	System bool   // definition lies in system-library source space
}

// Store is the query port the resolution engine consumes. SearchExact is
// anchored and case-sensitive. Implementations must reject queries issued
// before prewarm completes; that is a programmer error, not a retryable
// condition.
type Store interface {
	SearchExact(ctx context.Context, name string) ([]Hit, error)
}

// UnitLoader supplies the symbol records of every available build unit.
// How units are located is a collaborator concern.
type UnitLoader interface {
	LoadUnits(ctx context.Context) ([]Hit, error)
}
