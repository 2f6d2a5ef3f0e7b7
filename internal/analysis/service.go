// Package analysis wires the per-file pipeline: parse, extract, filter,
// resolve. Extraction is pure per file, so files run through a bounded
// worker pool with no ordering guarantee.
package analysis

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"swiftsight/internal/errors"
	"swiftsight/internal/extract"
	"swiftsight/internal/observability"
	"swiftsight/internal/resolve"
	"swiftsight/internal/syntax"
)

// FileResult is the full analysis outcome for one source file.
type FileResult struct {
	Path        string
	HomeModule  string
	Occurrences []extract.Occurrence
	Imports     []string
	Resolutions []resolve.Resolution
}

type Service struct {
	parser    syntax.Parser
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	modules   ModuleResolver
	workers   int
}

func NewService(parser syntax.Parser, resolver *resolve.Resolver, modules ModuleResolver, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		parser:    parser,
		extractor: extract.NewExtractor(),
		resolver:  resolver,
		modules:   modules,
		workers:   workers,
	}
}

// AnalyzeFile runs the whole pipeline for one file.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (FileResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysis.AnalyzeFile",
		trace.WithAttributes(attribute.String("file", path)))
	defer span.End()

	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}

	tree, err := s.parser.ParseFile(path, source)
	if err != nil {
		return FileResult{}, err
	}

	start := time.Now()
	occurrences, imports := s.extractor.Extract(tree, path)
	observability.ExtractionDuration.Observe(time.Since(start).Seconds())
	for _, o := range occurrences.Values() {
		observability.OccurrencesExtracted.WithLabelValues(o.Kind.String()).Inc()
	}

	usages := extract.FilterLocallyResolvable(occurrences)

	homeModule, err := s.modules.HomeModule(path)
	if err != nil {
		return FileResult{}, err
	}

	start = time.Now()
	resolutions, err := s.resolver.Resolve(ctx, usages, homeModule, imports)
	observability.ResolutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return FileResult{}, errors.AddContext(err, errors.CtxPath, path)
	}
	for _, res := range resolutions {
		observability.ResolutionOutcomes.WithLabelValues(res.Origin.Kind.String()).Inc()
	}

	importList := make([]string, 0, len(imports))
	for imp := range imports {
		importList = append(importList, imp)
	}
	sort.Strings(importList)

	observability.FilesAnalyzed.Inc()
	return FileResult{
		Path:        path,
		HomeModule:  homeModule,
		Occurrences: occurrences.Values(),
		Imports:     importList,
		Resolutions: resolutions,
	}, nil
}

// AnalyzeFiles fans paths out over the worker pool. Files that fail to
// parse are logged and skipped; a single bad file never sinks the run.
func (s *Service) AnalyzeFiles(ctx context.Context, paths []string) []FileResult {
	ctx, span := observability.Tracer.Start(ctx, "analysis.AnalyzeFiles",
		trace.WithAttributes(attribute.Int("files", len(paths))))
	defer span.End()

	type slot struct {
		result FileResult
		ok     bool
	}
	slots := make([]slot, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			result, err := s.AnalyzeFile(ctx, path)
			if err != nil {
				slog.Warn("failed to analyze file", "path", path, "error", err)
				return
			}
			slots[i] = slot{result: result, ok: true}
		}(i, path)
	}
	wg.Wait()

	results := make([]FileResult, 0, len(paths))
	for _, sl := range slots {
		if sl.ok {
			results = append(results, sl.result)
		}
	}
	return results
}
