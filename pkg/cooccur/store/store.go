// Package store defines persistence for indicator runs.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

// Store persists indicator runs and answers neighbor queries over them.
// Runs are immutable once saved.
type Store interface {
	Close() error

	// SaveRun persists a run and returns its ID, assigning one when
	// Run.ID is empty.
	SaveRun(ctx context.Context, r Run) (string, error)
	// GetRun returns run metadata or internalerr.ErrNotFound.
	GetRun(ctx context.Context, id string) (RunInfo, error)
	// ListRuns returns all runs ordered by descending ID, which for
	// generated IDs is newest first.
	ListRuns(ctx context.Context) ([]RunInfo, error)

	// TopNeighbors returns up to k items positively associated with item,
	// strongest first. k ≤ 0 means 10.
	TopNeighbors(ctx context.Context, runID, item string, k int) ([]Neighbor, error)
	// Score returns the stored score of a pair; false if they never
	// cooccurred.
	Score(ctx context.Context, runID, a, b string) (float64, bool, error)
}

// Run is a computed score matrix with the labels of its items.
type Run struct {
	ID        string
	CreatedAt time.Time
	Config    string    // free-form description of the settings used
	Rows      int       // observations in the input
	Items     []string  // label of each matrix index
	Marginals []float64 // observations per item after capping
	Scores    *sparse.CSR
}

// RunInfo is the metadata of a stored run.
type RunInfo struct {
	ID        string
	CreatedAt time.Time
	Config    string
	Rows      int
	Items     int
	Pairs     int
}

// Neighbor is an associated item and its score.
type Neighbor struct {
	Item  string
	Score float64
}

// DefaultNeighbors is the neighbor count used when k ≤ 0.
const DefaultNeighbors = 10

// Pairs counts the upper-triangle entries of a score matrix.
func Pairs(scores *sparse.CSR) int {
	n := 0
	scores.DoNonZero(func(i, j int, v float64) {
		if i < j {
			n++
		}
	})
	return n
}

// IDGen produces lexically sortable, monotonic run IDs.
type IDGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGen creates an ID generator.
func NewIDGen() *IDGen {
	return &IDGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns an ID for time t.
func (g *IDGen) New(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}
