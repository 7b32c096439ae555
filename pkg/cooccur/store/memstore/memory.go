// Package memstore is an in-memory store.Store.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cognicore/cooccur/pkg/cooccur/indicator"
	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
	"github.com/cognicore/cooccur/pkg/cooccur/vocab"
)

type run struct {
	info  store.RunInfo
	items *vocab.Vocab
	save  store.Run
}

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu   sync.RWMutex
	ids  *store.IDGen
	runs map[string]*run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:  store.NewIDGen(),
		runs: make(map[string]*run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun keeps a copy of the run's scores.
func (s *Store) SaveRun(ctx context.Context, r store.Run) (string, error) {
	if r.Scores == nil {
		return "", fmt.Errorf("run has no scores: %w", internalerr.ErrInvalidInput)
	}
	n, c := r.Scores.Dims()
	if n != c || n != len(r.Items) || (r.Marginals != nil && len(r.Marginals) != n) {
		return "", fmt.Errorf("run has %dx%d scores for %d items: %w", n, c, len(r.Items), internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.ID == "" {
		r.ID = s.ids.New(r.CreatedAt)
	}
	if _, exists := s.runs[r.ID]; exists {
		return "", fmt.Errorf("run %s already stored: %w", r.ID, internalerr.ErrInvalidInput)
	}

	r.Items = slices.Clone(r.Items)
	r.Marginals = slices.Clone(r.Marginals)
	r.Scores = r.Scores.Clone()
	s.runs[r.ID] = &run{
		info: store.RunInfo{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			Config:    r.Config,
			Rows:      r.Rows,
			Items:     n,
			Pairs:     store.Pairs(r.Scores),
		},
		items: vocab.FromLabels(r.Items),
		save:  r,
	}
	return r.ID, nil
}

// GetRun returns run metadata.
func (s *Store) GetRun(ctx context.Context, id string) (store.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.RunInfo{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r.info, nil
}

// ListRuns returns all runs by descending ID.
func (s *Store) ListRuns(ctx context.Context) ([]store.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.RunInfo, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.info)
	}
	slices.SortFunc(out, func(a, b store.RunInfo) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

// TopNeighbors returns the strongest positive partners of item.
func (s *Store) TopNeighbors(ctx context.Context, runID, item string, k int) ([]store.Neighbor, error) {
	if k <= 0 {
		k = store.DefaultNeighbors
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, idx, err := s.lookup(runID, item)
	if err != nil {
		return nil, err
	}
	var out []store.Neighbor
	for _, n := range indicator.Neighbors(r.save.Scores, idx, k, 0) {
		out = append(out, store.Neighbor{Item: r.items.Label(n.Item), Score: n.Score})
	}
	return out, nil
}

// Score returns the score of the pair (a, b).
func (s *Store) Score(ctx context.Context, runID, a, b string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ia, err := s.lookup(runID, a)
	if err != nil {
		return 0, false, err
	}
	_, ib, err := s.lookup(runID, b)
	if err != nil {
		return 0, false, err
	}
	v := r.save.Scores.At(ia, ib)
	return v, v != 0, nil
}

func (s *Store) lookup(runID, item string) (*run, int, error) {
	r, ok := s.runs[runID]
	if !ok {
		return nil, 0, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	idx, ok := r.items.Index(item)
	if !ok {
		return nil, 0, fmt.Errorf("item %q in run %s: %w", item, runID, internalerr.ErrNotFound)
	}
	return r, idx, nil
}
