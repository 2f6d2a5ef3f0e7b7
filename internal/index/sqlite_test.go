package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"swiftsight/internal/errors"
	"swiftsight/internal/extract"
)

type sliceLoader []Hit

func (l sliceLoader) LoadUnits(ctx context.Context) ([]Hit, error) {
	return l, nil
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteQueryBeforePrewarmFails(t *testing.T) {
	store := openTestStore(t)

	_, err := store.SearchExact(context.Background(), "Widget")
	if err == nil {
		t.Fatal("query before prewarm must fail")
	}
	if !errors.IsCode(err, errors.CodePrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
}

func TestSQLitePrewarmAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	loader := sliceLoader{
		{Name: "Widget", Module: "LibA", Kind: extract.DefStruct, USR: "liba-widget"},
		{Name: "Widget", Module: "LibB", Kind: extract.DefClass, USR: "libb-widget"},
		{Name: "Result", Module: "Swift", Kind: extract.DefEnum, USR: "swift-result", System: true},
	}
	if err := store.Prewarm(ctx, loader); err != nil {
		t.Fatal(err)
	}

	hits, err := store.SearchExact(ctx, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	modules := map[string]extract.DefinitionKind{}
	for _, h := range hits {
		modules[h.Module] = h.Kind
	}
	if modules["LibA"] != extract.DefStruct || modules["LibB"] != extract.DefClass {
		t.Errorf("unexpected hits: %v", modules)
	}

	system, err := store.SearchExact(ctx, "Result")
	if err != nil {
		t.Fatal(err)
	}
	if len(system) != 1 || !system[0].System {
		t.Errorf("system flag lost in round trip: %v", system)
	}

	if missing, err := store.SearchExact(ctx, "Ghost"); err != nil || len(missing) != 0 {
		t.Errorf("expected no hits for unknown name, got %v (%v)", missing, err)
	}
}

func TestSQLitePrewarmUpsertsByUSR(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sliceLoader{{Name: "Widget", Module: "LibA", Kind: extract.DefStruct, USR: "w"}}
	if err := store.Prewarm(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := sliceLoader{{Name: "Widget", Module: "LibB", Kind: extract.DefClass, USR: "w"}}
	if err := store.Prewarm(ctx, second); err != nil {
		t.Fatal(err)
	}

	hits, err := store.SearchExact(ctx, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("same USR must not duplicate, got %d hits", len(hits))
	}
	if hits[0].Module != "LibB" {
		t.Errorf("re-ingest must win, got module %s", hits[0].Module)
	}
}

func TestDirUnitLoader(t *testing.T) {
	dir := t.TempDir()
	unit := `[
  {"name": "Widget", "module": "LibA", "kind": "struct", "usr": "liba-widget"},
  {"name": "Result", "module": "Swift", "kind": "enum", "usr": "swift-result", "system": true}
]`
	if err := os.WriteFile(filepath.Join(dir, "liba.json"), []byte(unit), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-JSON files are skipped, not an error.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}

	hits, err := DirUnitLoader{Dir: dir}.LoadUnits(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Name != "Widget" || hits[0].Kind != extract.DefStruct {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
	if !hits[1].System || hits[1].Kind != extract.DefEnum {
		t.Errorf("unexpected second hit: %+v", hits[1])
	}
}

func TestDirUnitLoaderMissingDirIsEmpty(t *testing.T) {
	hits, err := DirUnitLoader{Dir: filepath.Join(t.TempDir(), "absent")}.LoadUnits(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("missing directory must yield no units, got %v", hits)
	}
}
