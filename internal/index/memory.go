package index

import (
	"context"
	"sync"
	"sync/atomic"

	"swiftsight/internal/errors"
)

// MemoryStore is an in-process Store, used by tests and as a fallback when
// no index database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	byName    map[string][]Hit
	prewarmed atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byName: make(map[string][]Hit)}
}

func (s *MemoryStore) Add(hits ...Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hits {
		if h.USR == "" {
			h.USR = h.Module + "::" + h.Name
		}
		s.byName[h.Name] = append(s.byName[h.Name], h)
	}
}

func (s *MemoryStore) Prewarm(ctx context.Context, loader UnitLoader) error {
	hits, err := loader.LoadUnits(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "load build units")
	}
	s.Add(hits...)
	s.prewarmed.Store(true)
	return nil
}

// MarkPrewarmed unlocks queries without an ingest pass; tests that Add hits
// directly use this.
func (s *MemoryStore) MarkPrewarmed() {
	s.prewarmed.Store(true)
}

func (s *MemoryStore) SearchExact(ctx context.Context, name string) ([]Hit, error) {
	if !s.prewarmed.Load() {
		return nil, errors.New(errors.CodePrecondition, "index queried before prewarm")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make([]Hit, len(s.byName[name]))
	copy(hits, s.byName[name])
	return hits, nil
}
