package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"swiftsight/internal/analysis"
	"swiftsight/internal/config"
	"swiftsight/internal/history"
	"swiftsight/internal/index"
	"swiftsight/internal/observability"
	"swiftsight/internal/output"
	"swiftsight/internal/resolve"
	"swiftsight/internal/syntax"
	"swiftsight/internal/util"
	"swiftsight/internal/watcher"
)

type App struct {
	Config  *config.Config
	Service *analysis.Service

	indexStore   *index.SQLiteStore
	historyStore *history.Store
	teaProgram   *tea.Program

	// Last full result per file path, for incremental watch updates.
	resultsByFile map[string]analysis.FileResult
}

func NewApp(cfg *config.Config) (*App, error) {
	parser, err := syntax.NewTreeSitterParser(cfg.GrammarPath)
	if err != nil {
		return nil, fmt.Errorf("load grammar: %w", err)
	}

	indexStore, err := index.Open(cfg.IndexDB)
	if err != nil {
		return nil, err
	}

	historyStore, err := history.Open(cfg.HistoryDB)
	if err != nil {
		_ = indexStore.Close()
		return nil, err
	}

	limiter := util.NewLimiter(cfg.Interfaces.BuildRate, cfg.Interfaces.BuildBurst)
	interfaces := resolve.NewInterfaceIndex(
		resolve.DirLocator{Paths: cfg.InterfacePaths},
		parser,
	).WithLimiter(limiter)

	resolver := resolve.NewResolver(indexStore, interfaces, cfg.SystemModule)
	modules := analysis.MapModuleResolver{Overrides: cfg.ModuleMap}
	service := analysis.NewService(parser, resolver, modules, cfg.Workers)

	return &App{
		Config:        cfg,
		Service:       service,
		indexStore:    indexStore,
		historyStore:  historyStore,
		resultsByFile: make(map[string]analysis.FileResult),
	}, nil
}

func (a *App) Close() {
	if a.historyStore != nil {
		_ = a.historyStore.Close()
	}
	if a.indexStore != nil {
		_ = a.indexStore.Close()
	}
}

func (a *App) Run(ctx context.Context, once, withUI bool) error {
	// The index must be warm before any resolution query.
	start := time.Now()
	if err := a.indexStore.Prewarm(ctx, index.DirUnitLoader{Dir: a.Config.UnitsDir}); err != nil {
		return fmt.Errorf("prewarm index: %w", err)
	}
	observability.IndexPrewarmDuration.Observe(time.Since(start).Seconds())

	if a.Config.MetricsAddr != "" {
		srv := observability.NewServer(a.Config.MetricsAddr)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop(ctx) }()
	}

	files, err := a.ScanDirectories(a.Config.ScanPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	results := a.Service.AnalyzeFiles(ctx, files)
	for _, r := range results {
		a.resultsByFile[r.Path] = r
	}
	a.recordSnapshot(ctx)

	if a.Config.Output.TSV != "" {
		if err := a.writeTSV(); err != nil {
			slog.Warn("failed to write TSV report", "error", err)
		}
	}

	if once {
		a.printSummary()
		return nil
	}

	w, err := watcher.New(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		a.onFilesChanged(ctx, paths)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.Config.ScanPaths); err != nil {
		return err
	}

	if withUI {
		a.teaProgram = tea.NewProgram(initialModel(), tea.WithAltScreen())
		a.pushUpdate()
		_, err := a.teaProgram.Run()
		return err
	}

	a.printSummary()
	slog.Info("watching for changes", "paths", a.Config.ScanPaths)
	<-ctx.Done()
	return nil
}

func (a *App) onFilesChanged(ctx context.Context, paths []string) {
	changed := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			// Deleted file: its stale results must not linger.
			delete(a.resultsByFile, p)
			continue
		}
		changed = append(changed, p)
	}

	results := a.Service.AnalyzeFiles(ctx, changed)
	for _, r := range results {
		a.resultsByFile[r.Path] = r
	}
	a.recordSnapshot(ctx)

	if a.Config.Output.TSV != "" {
		if err := a.writeTSV(); err != nil {
			slog.Warn("failed to write TSV report", "error", err)
		}
	}
	a.pushUpdate()
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if !strings.HasSuffix(base, ".swift") {
				return nil
			}
			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}
			// Overlapping scan roots must not analyze a file twice.
			files = util.AppendUnique(files, seen, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (a *App) recordSnapshot(ctx context.Context) {
	snap := history.Snapshot{FileCount: len(a.resultsByFile)}
	for _, r := range a.resultsByFile {
		snap.UsageCount += len(r.Resolutions)
		for _, res := range r.Resolutions {
			if res.Origin.Kind == resolve.OriginUnknown {
				snap.UnknownCount++
			} else {
				snap.ResolvedCount++
			}
		}
	}
	if _, err := a.historyStore.Record(ctx, snap); err != nil {
		slog.Warn("failed to record history snapshot", "error", err)
	}
}

func (a *App) writeTSV() error {
	results := make([]analysis.FileResult, 0, len(a.resultsByFile))
	for _, r := range a.resultsByFile {
		results = append(results, r)
	}
	report, err := output.NewTSVGenerator().Generate(results)
	if err != nil {
		return err
	}
	return os.WriteFile(a.Config.Output.TSV, []byte(report), 0o644)
}

func (a *App) unknowns() []unknownRow {
	var rows []unknownRow
	for path, r := range a.resultsByFile {
		for _, res := range r.Resolutions {
			if res.Origin.Kind != resolve.OriginUnknown {
				continue
			}
			rows = append(rows, unknownRow{
				Symbol: res.Occurrence.Name,
				File:   path,
				Line:   res.Occurrence.Line,
			})
		}
	}
	return rows
}

func (a *App) pushUpdate() {
	if a.teaProgram == nil {
		return
	}
	a.teaProgram.Send(updateMsg{
		unknowns:  a.unknowns(),
		fileCount: len(a.resultsByFile),
	})
}

func (a *App) printSummary() {
	resolved, unknown := 0, 0
	for _, r := range a.resultsByFile {
		for _, res := range r.Resolutions {
			if res.Origin.Kind == resolve.OriginUnknown {
				unknown++
			} else {
				resolved++
			}
		}
	}
	fmt.Printf("%d files, %d usages resolved, %d unknown\n",
		len(a.resultsByFile), resolved, unknown)
}
