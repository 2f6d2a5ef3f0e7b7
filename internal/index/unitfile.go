package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"swiftsight/internal/extract"
)

// unitRecord is the on-disk shape of one exported symbol in a build-unit
// listing.
type unitRecord struct {
	Name   string `json:"name"`
	Module string `json:"module"`
	Kind   string `json:"kind"`
	USR    string `json:"usr"`
	System bool   `json:"system"`
}

// DirUnitLoader reads build-unit symbol listings (*.json) from a directory.
// Producing those listings is the build system's concern, not ours.
type DirUnitLoader struct {
	Dir string
}

func (l DirUnitLoader) LoadUnits(ctx context.Context) ([]Hit, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read unit directory %q: %w", l.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var hits []Hit
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(l.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read unit %q: %w", path, err)
		}
		var records []unitRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode unit %q: %w", path, err)
		}
		for _, rec := range records {
			hits = append(hits, Hit{
				Name:   rec.Name,
				Module: rec.Module,
				Kind:   kindFromString(rec.Kind),
				USR:    rec.USR,
				System: rec.System,
			})
		}
	}
	return hits, nil
}

func kindFromString(s string) extract.DefinitionKind {
	switch s {
	case "class":
		return extract.DefClass
	case "struct":
		return extract.DefStruct
	case "enum":
		return extract.DefEnum
	case "protocol":
		return extract.DefProtocol
	case "typealias":
		return extract.DefTypeAlias
	case "macro":
		return extract.DefMacro
	case "associatedtype":
		return extract.DefAssociatedType
	case "actor":
		return extract.DefActor
	default:
		return extract.DefUnknown
	}
}
