package resolve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"swiftsight/internal/extract"
	"swiftsight/internal/observability"
	"swiftsight/internal/syntax"
	"swiftsight/internal/util"
)

// InterfaceLocator finds the published interface text of a module, or
// reports its absence.
type InterfaceLocator interface {
	Locate(module string) (string, bool)
}

// DirLocator searches a fixed list of directories for
// "<Module>.swiftinterface".
type DirLocator struct {
	Paths []string
}

func (l DirLocator) Locate(module string) (string, bool) {
	for _, dir := range l.Paths {
		candidate := filepath.Join(dir, module+".swiftinterface")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// InterfaceIndex lazily extracts the definition set of each external
// module's published interface, memoized for the process lifetime. The
// per-module once guarantees at most one build per module name under
// concurrent access; every waiter observes the same completed result.
type InterfaceIndex struct {
	locator   InterfaceLocator
	parser    syntax.Parser
	extractor *extract.Extractor
	limiter   *util.Limiter

	mu      sync.Mutex
	entries map[string]*ifaceEntry
}

type ifaceEntry struct {
	once sync.Once
	defs map[string]extract.DefinitionKind
}

func NewInterfaceIndex(locator InterfaceLocator, parser syntax.Parser) *InterfaceIndex {
	return &InterfaceIndex{
		locator:   locator,
		parser:    parser,
		extractor: &extract.Extractor{DefinitionsOnly: true},
		entries:   make(map[string]*ifaceEntry),
	}
}

// WithLimiter throttles interface builds; nil disables throttling.
func (ii *InterfaceIndex) WithLimiter(limiter *util.Limiter) *InterfaceIndex {
	ii.limiter = limiter
	return ii
}

// Definitions returns the module's interface definition set, building and
// caching it on first use. A missing or unreadable interface degrades to an
// empty set; it never fails resolution.
func (ii *InterfaceIndex) Definitions(ctx context.Context, module string) map[string]extract.DefinitionKind {
	ii.mu.Lock()
	entry, ok := ii.entries[module]
	if !ok {
		entry = &ifaceEntry{}
		ii.entries[module] = entry
	}
	ii.mu.Unlock()

	if ok {
		observability.InterfaceCacheHits.Inc()
	}

	entry.once.Do(func() {
		entry.defs = ii.build(ctx, module)
	})
	return entry.defs
}

func (ii *InterfaceIndex) build(ctx context.Context, module string) map[string]extract.DefinitionKind {
	observability.InterfaceBuilds.Inc()

	if ii.limiter != nil {
		if err := ii.limiter.Wait(ctx, 1); err != nil {
			slog.Warn("interface build aborted", "module", module, "error", err)
			return map[string]extract.DefinitionKind{}
		}
	}

	path, found := ii.locator.Locate(module)
	if !found {
		slog.Debug("no published interface", "module", module)
		return map[string]extract.DefinitionKind{}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read interface", "module", module, "path", path, "error", err)
		return map[string]extract.DefinitionKind{}
	}

	tree, err := ii.parser.ParseFile(path, source)
	if err != nil {
		slog.Warn("failed to parse interface", "module", module, "path", path, "error", err)
		return map[string]extract.DefinitionKind{}
	}

	occurrences, _ := ii.extractor.Extract(tree, path)
	defs := make(map[string]extract.DefinitionKind)
	for _, o := range occurrences.Values() {
		if o.Kind != extract.OccDefinition {
			continue
		}
		if _, exists := defs[o.Name]; !exists {
			defs[o.Name] = o.DefKind
		}
	}

	slog.Debug("built interface index", "module", module, "definitions", len(defs))
	return defs
}
