package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	errs "github.com/matzehuels/pangraph/pkg/errors"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Strains = slices.Clone(r.Strains)
	r.Graph = slices.Clone(r.Graph)
	m.records[r.ID] = r
	return nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "record %s", id)
	}
	return r, nil
}

// BySource implements Store.
func (m *Memory) BySource(_ context.Context, sourceHash string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.records {
		if r.SourceHash == sourceHash {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Close implements Store.
func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
