package analysis

import (
	"path/filepath"
	"strings"
)

// ModuleResolver supplies the home module name for a file. How that name is
// derived is a collaborator concern; the pipeline only needs the answer
// before invoking the resolution engine.
type ModuleResolver interface {
	HomeModule(path string) (string, error)
}

// MapModuleResolver answers from configured path prefixes, falling back to
// the file's parent directory name — the usual target layout of a Swift
// package ("Sources/<Module>/...").
type MapModuleResolver struct {
	Overrides map[string]string // path prefix -> module name
}

func (m MapModuleResolver) HomeModule(path string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(path))
	for prefix, module := range m.Overrides {
		p := filepath.ToSlash(filepath.Clean(prefix))
		if clean == p || strings.HasPrefix(clean, p+"/") {
			return module, nil
		}
	}

	dir := filepath.Dir(clean)
	if parts := strings.Split(filepath.ToSlash(dir), "/"); len(parts) > 0 {
		for i := len(parts) - 1; i > 0; i-- {
			if parts[i-1] == "Sources" || parts[i-1] == "Tests" {
				return parts[i], nil
			}
		}
	}
	return filepath.Base(dir), nil
}
