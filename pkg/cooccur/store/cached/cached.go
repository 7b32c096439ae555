// Package cached puts an LRU cache in front of a store.Store. Saved runs
// never change, so cached neighbor lists and run metadata stay valid.
package cached

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/cooccur/pkg/cooccur/store"
)

// DefaultSize is the number of entries kept per cache.
const DefaultSize = 4096

type neighborKey struct {
	run  string
	item string
	k    int
}

// Store wraps another store.Store.
type Store struct {
	store.Store
	neighbors *lru.Cache[neighborKey, []store.Neighbor]
	runs      *lru.Cache[string, store.RunInfo]
}

// New wraps inner with caches of the given size (DefaultSize if ≤ 0).
func New(inner store.Store, size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	neighbors, err := lru.New[neighborKey, []store.Neighbor](size)
	if err != nil {
		return nil, err
	}
	runs, err := lru.New[string, store.RunInfo](size)
	if err != nil {
		return nil, err
	}
	return &Store{Store: inner, neighbors: neighbors, runs: runs}, nil
}

// GetRun implements store.Store.
func (s *Store) GetRun(ctx context.Context, id string) (store.RunInfo, error) {
	if info, ok := s.runs.Get(id); ok {
		return info, nil
	}
	info, err := s.Store.GetRun(ctx, id)
	if err != nil {
		return info, err
	}
	s.runs.Add(id, info)
	return info, nil
}

// TopNeighbors implements store.Store. Errors are not cached.
func (s *Store) TopNeighbors(ctx context.Context, runID, item string, k int) ([]store.Neighbor, error) {
	if k <= 0 {
		k = store.DefaultNeighbors
	}
	key := neighborKey{run: runID, item: item, k: k}
	if n, ok := s.neighbors.Get(key); ok {
		return slices.Clone(n), nil
	}
	n, err := s.Store.TopNeighbors(ctx, runID, item, k)
	if err != nil {
		return nil, err
	}
	s.neighbors.Add(key, n)
	return slices.Clone(n), nil
}

// Len reports how many neighbor lists are cached.
func (s *Store) Len() int { return s.neighbors.Len() }
