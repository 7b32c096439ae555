// Package indicator computes cooccurrence indicators: for every pair of items
// seen together in at least one observation, the signed log-likelihood ratio
// of their joint presence.
package indicator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cooccur/pkg/cooccur/llr"
	"github.com/cognicore/cooccur/pkg/cooccur/logging"
	"github.com/cognicore/cooccur/pkg/cooccur/sample"
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

// Engine turns an observation×item matrix into an item×item score matrix.
// An Engine holding an injected Source must not run concurrently.
type Engine struct {
	opts Options
	log  *logging.Logger
}

// Result is the output of one run.
type Result struct {
	// Scores is symmetric; entry (i, j) is the signed G² of items i and j.
	// Pairs that never cooccur, pairs scoring exactly 0 and the diagonal
	// are absent.
	Scores *sparse.CSR
	// Marginals[i] is the number of observations containing item i after
	// capping.
	Marginals []float64
	Stats     logging.RunStats
}

// New creates an engine from DefaultOptions modified by opts.
func New(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return &Engine{opts: o, log: logging.OrNoop(o.Logger)}
}

// Options returns the effective configuration.
func (e *Engine) Options() Options { return e.opts }

// Indicators returns the symmetric score matrix for m. A *sparse.CSR input
// is binarized and capped in place unless CopyInput is set; any other
// mat.Matrix is converted to a fresh sparse matrix and left untouched.
func (e *Engine) Indicators(ctx context.Context, m mat.Matrix) (*sparse.CSR, error) {
	res, err := e.Run(ctx, m)
	if err != nil {
		return nil, err
	}
	return res.Scores, nil
}

// Run is Indicators returning marginals and run statistics as well.
func (e *Engine) Run(ctx context.Context, m mat.Matrix) (*Result, error) {
	start := time.Now()
	a := e.working(m)
	rows, items := a.Dims()
	st := logging.RunStats{Rows: rows, Items: items, NNZInput: a.NNZ()}

	a.Binarize()
	capped := e.sampler().Cap(a, e.opts.RowCap, e.opts.ItemCap)
	st.NNZCapped = a.NNZ()
	st.Dropped = capped.Dropped
	e.log.DebugContext(ctx, "capped input",
		"rows_capped", capped.RowsCapped,
		"items_capped", capped.ColumnsCapped,
		"dropped", capped.Dropped,
	)

	marginals := a.ColSums()
	cooc := a.Transpose().Mul(a)

	triplets, err := e.score(ctx, cooc, marginals, float64(rows))
	if err != nil {
		e.log.LogRun(ctx, st, err)
		return nil, err
	}

	st.Pairs = len(triplets) / 2
	st.Elapsed = time.Since(start)
	e.log.LogRun(ctx, st, nil)

	return &Result{
		Scores:    sparse.FromTriplets(items, items, triplets),
		Marginals: marginals,
		Stats:     st,
	}, nil
}

func (e *Engine) working(m mat.Matrix) *sparse.CSR {
	if s, ok := m.(*sparse.CSR); ok {
		if e.opts.CopyInput {
			return s.Clone()
		}
		return s
	}
	return sparse.FromDense(m)
}

func (e *Engine) sampler() *sample.Sampler {
	if e.opts.Source != nil {
		return sample.New(e.opts.Source)
	}
	return sample.NewSeeded(e.opts.Seed)
}

// score derives the contingency table of every upper-triangle pair of cooc
// and emits each nonzero score twice, once per orientation. Rows of cooc are split
// into contiguous blocks, one per worker, and the blocks are concatenated in
// order so the output does not depend on the worker count.
func (e *Engine) score(ctx context.Context, cooc *sparse.CSR, marginals []float64, rows float64) ([]sparse.Triplet, error) {
	items, _ := cooc.Dims()
	workers := min(e.opts.Workers, max(items, 1))
	parts := make([][]sparse.Triplet, workers)
	block := (items + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*block, min((w+1)*block, items)
		g.Go(func() error {
			var out []sparse.Triplet
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				start, end := cooc.RowSpan(i)
				for p := start; p < end; p++ {
					j := cooc.ColAt(p)
					k11 := cooc.ValueAt(p)
					if j <= i || k11 == 0 {
						continue
					}
					k12 := marginals[i] - k11
					k21 := marginals[j] - k11
					k22 := rows - k11 - k12 - k21
					s := llr.SignedG2Cells(k11, k12, k21, k22)
					if s == 0 {
						continue
					}
					out = append(out,
						sparse.Triplet{Row: i, Col: j, Value: s},
						sparse.Triplet{Row: j, Col: i, Value: s},
					)
				}
			}
			parts[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, p := range parts {
		n += len(p)
	}
	all := make([]sparse.Triplet, 0, n)
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

// Indicators computes the score matrix of m with the given caps and the
// default seed. The caps follow the engine's convention: ≤ 0 disables.
func Indicators(m mat.Matrix, itemCap, rowCap int) (*sparse.CSR, error) {
	return New(WithItemCap(itemCap), WithRowCap(rowCap)).Indicators(context.Background(), m)
}
