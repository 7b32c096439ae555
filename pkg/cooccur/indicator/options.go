package indicator

import (
	"math/rand/v2"

	"github.com/cognicore/cooccur/pkg/cooccur/logging"
)

// DefaultRowCap is the default maximum number of items kept per observation.
const DefaultRowCap = 200

// Options configures an Engine.
type Options struct {
	// RowCap caps the items retained per observation; ≤ 0 disables it.
	RowCap int
	// ItemCap caps the observations retained per item; ≤ 0 disables it.
	ItemCap int
	// CopyInput makes the engine work on a private copy of a *sparse.CSR
	// input. When false the caller's matrix is binarized and capped in place.
	CopyInput bool
	// Workers is the number of goroutines scoring pairs.
	Workers int
	// Seed seeds the sampler when Source is nil.
	Seed uint64
	// Source, if set, supplies the randomness for capping.
	Source rand.Source
	Logger *logging.Logger
}

// DefaultOptions returns the documented defaults: row cap 200, item cap
// disabled, in-place mutation, a single worker.
func DefaultOptions() Options {
	return Options{
		RowCap:  DefaultRowCap,
		Workers: 1,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithRowCap sets the per-observation cap.
func WithRowCap(n int) Option { return func(o *Options) { o.RowCap = n } }

// WithItemCap sets the per-item cap.
func WithItemCap(n int) Option { return func(o *Options) { o.ItemCap = n } }

// WithCopyInput controls whether sparse inputs are copied before mutation.
func WithCopyInput(copyInput bool) Option { return func(o *Options) { o.CopyInput = copyInput } }

// WithWorkers sets the number of scoring goroutines.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithSeed seeds the default sampler.
func WithSeed(seed uint64) Option { return func(o *Options) { o.Seed = seed } }

// WithSource injects the random source used for capping.
func WithSource(src rand.Source) Option { return func(o *Options) { o.Source = src } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(o *Options) { o.Logger = l } }
