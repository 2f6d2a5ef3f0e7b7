package resolve

import (
	"context"
	"sort"
	"strings"

	"swiftsight/internal/errors"
	"swiftsight/internal/extract"
	"swiftsight/internal/index"
)

// recognizedKinds restricts index matches to canonical type-level
// definitions; member hits and unknowns are noise for origin resolution.
var recognizedKinds = map[extract.DefinitionKind]bool{
	extract.DefClass:     true,
	extract.DefStruct:    true,
	extract.DefEnum:      true,
	extract.DefProtocol:  true,
	extract.DefTypeAlias: true,
	extract.DefMacro:     true,
	extract.DefActor:     true,
}

// Resolver maps unresolved usages onto module origins using the global
// program index, falling back to lazily built interface indexes.
type Resolver struct {
	index        index.Store
	interfaces   *InterfaceIndex
	systemModule string
}

func NewResolver(store index.Store, interfaces *InterfaceIndex, systemModule string) *Resolver {
	return &Resolver{
		index:        store,
		interfaces:   interfaces,
		systemModule: systemModule,
	}
}

// Resolve emits one resolution per usage. Per-usage lookup failures degrade
// to Unknown; the only error surfaced is the index precondition violation
// (querying before prewarm), which is fatal by contract.
func (r *Resolver) Resolve(ctx context.Context, usages []extract.Occurrence, homeModule string, imports map[string]bool) ([]Resolution, error) {
	effective := make(map[string]bool, len(imports)+2)
	for imp := range imports {
		effective[imp] = true
	}
	effective[r.systemModule] = true
	effective[homeModule] = true

	resolutions := make([]Resolution, 0, len(usages))
	var deferred []extract.Occurrence

	for _, usage := range usages {
		res, settled, err := r.resolveOne(ctx, usage, homeModule, imports, effective)
		if err != nil {
			return nil, err
		}
		if !settled {
			deferred = append(deferred, usage)
			continue
		}
		resolutions = append(resolutions, res)
	}

	resolutions = append(resolutions, r.resolveDeferred(ctx, deferred, effective)...)
	return resolutions, nil
}

func (r *Resolver) resolveOne(ctx context.Context, usage extract.Occurrence, homeModule string, literal, effective map[string]bool) (Resolution, bool, error) {
	// Explicit import qualification is the cheapest, most certain case.
	// Kind refinement is deferred; the qualifier already names the module.
	if usage.ImportQualified {
		if module := qualifyingImport(usage.FullName, effective); module != "" {
			return Resolution{
				Occurrence: usage,
				Origin:     Origin{Kind: OriginExternal, Module: module},
				DefKind:    extract.DefUnknown,
			}, true, nil
		}
	}

	hits, err := r.index.SearchExact(ctx, usage.Name)
	if err != nil {
		return Resolution{}, false, errors.AddContext(err, errors.CtxSymbol, usage.Name)
	}

	matches := make([]index.Hit, 0, len(hits))
	for _, h := range hits {
		if recognizedKinds[h.Kind] {
			matches = append(matches, h)
		}
	}

	if len(matches) > 0 && allSystem(matches) {
		return Resolution{
			Occurrence: usage,
			Origin:     Origin{Kind: OriginSystem},
			DefKind:    matches[0].Kind,
		}, true, nil
	}

	// Deduplicate by stable identity, then keep only importable candidates.
	seen := make(map[string]bool, len(matches))
	var candidates []index.Hit
	for _, h := range matches {
		if seen[h.USR] {
			continue
		}
		seen[h.USR] = true
		if effective[h.Module] {
			candidates = append(candidates, h)
		}
	}

	// A single module among the literal imports wins outright.
	literalModules := distinctModules(candidates, literal)
	if len(literalModules) == 1 {
		module := literalModules[0]
		return Resolution{
			Occurrence: usage,
			Origin:     Origin{Kind: OriginExternal, Module: module},
			DefKind:    kindForModule(candidates, module),
		}, true, nil
	}

	allModules := distinctModules(candidates, nil)
	if len(allModules) > 1 {
		// Local definitions win ties, mirroring how the compiler reports an
		// otherwise-ambiguous reference as satisfied by the current module.
		// Heuristic, deliberately preserved as-is.
		for _, m := range allModules {
			if m == homeModule {
				return Resolution{
					Occurrence: usage,
					Origin:     Origin{Kind: OriginInternal},
					DefKind:    kindForModule(candidates, homeModule),
				}, true, nil
			}
		}
		return Resolution{
			Occurrence: usage,
			Origin:     Origin{Kind: OriginUnknown},
			DefKind:    extract.DefUnknown,
		}, true, nil
	}

	if len(candidates) == 1 {
		// Defensive fallback: one candidate, regardless of literal imports.
		h := candidates[0]
		origin := Origin{Kind: OriginExternal, Module: h.Module}
		switch h.Module {
		case homeModule:
			origin = Origin{Kind: OriginInternal}
		case r.systemModule:
			origin = Origin{Kind: OriginSystem}
		}
		return Resolution{Occurrence: usage, Origin: origin, DefKind: h.Kind}, true, nil
	}

	// Nothing in the global index; hand over to the interface index pass.
	return Resolution{}, false, nil
}

// resolveDeferred matches leftover usages against the lazily built
// per-module interface definition sets of the effective imports.
func (r *Resolver) resolveDeferred(ctx context.Context, deferred []extract.Occurrence, effective map[string]bool) []Resolution {
	if len(deferred) == 0 {
		return nil
	}

	modules := make([]string, 0, len(effective))
	for m := range effective {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	resolutions := make([]Resolution, 0, len(deferred))
	for _, usage := range deferred {
		res := Resolution{
			Occurrence: usage,
			Origin:     Origin{Kind: OriginUnknown},
			DefKind:    extract.DefUnknown,
		}
		for _, module := range modules {
			defs := r.interfaces.Definitions(ctx, module)
			if kind, ok := defs[usage.Name]; ok {
				res.Origin = Origin{Kind: OriginExternal, Module: module}
				res.DefKind = kind
				break
			}
		}
		resolutions = append(resolutions, res)
	}
	return resolutions
}

// qualifyingImport returns the import whose name leads fullName, preferring
// the longest dotted match so qualified member imports win over their first
// segment.
func qualifyingImport(fullName string, effective map[string]bool) string {
	best := ""
	for imp := range effective {
		if fullName == imp || strings.HasPrefix(fullName, imp+".") {
			if len(imp) > len(best) {
				best = imp
			}
		}
	}
	return best
}

func allSystem(hits []index.Hit) bool {
	for _, h := range hits {
		if !h.System {
			return false
		}
	}
	return true
}

// distinctModules returns the sorted distinct modules of the candidates,
// optionally restricted to a module set.
func distinctModules(candidates []index.Hit, restrict map[string]bool) []string {
	seen := make(map[string]bool)
	var modules []string
	for _, h := range candidates {
		if restrict != nil && !restrict[h.Module] {
			continue
		}
		if !seen[h.Module] {
			seen[h.Module] = true
			modules = append(modules, h.Module)
		}
	}
	sort.Strings(modules)
	return modules
}

func kindForModule(candidates []index.Hit, module string) extract.DefinitionKind {
	for _, h := range candidates {
		if h.Module == module {
			return h.Kind
		}
	}
	return extract.DefUnknown
}
