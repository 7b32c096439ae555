// Package vocab maps observation and item labels to dense matrix indices.
package vocab

import (
	"github.com/cognicore/cooccur/pkg/cooccur/sparse"
)

// Vocab assigns consecutive indices to labels in first-seen order.
type Vocab struct {
	index  map[string]int
	labels []string
}

// New creates an empty vocabulary.
func New() *Vocab {
	return &Vocab{index: make(map[string]int)}
}

// FromLabels builds a vocabulary whose indices follow labels. Duplicate
// labels keep their first index.
func FromLabels(labels []string) *Vocab {
	v := New()
	for _, l := range labels {
		v.Add(l)
	}
	return v
}

// Add returns the index of label, assigning the next one if it is new.
func (v *Vocab) Add(label string) int {
	if i, ok := v.index[label]; ok {
		return i
	}
	i := len(v.labels)
	v.index[label] = i
	v.labels = append(v.labels, label)
	return i
}

// Index looks up a label.
func (v *Vocab) Index(label string) (int, bool) {
	i, ok := v.index[label]
	return i, ok
}

// Label returns the label at index i.
func (v *Vocab) Label(i int) string { return v.labels[i] }

// Len is the number of labels.
func (v *Vocab) Len() int { return len(v.labels) }

// Labels returns the labels in index order. The slice must not be modified.
func (v *Vocab) Labels() []string { return v.labels }

// Matrix is an observation×item matrix with its label dictionaries.
type Matrix struct {
	M            *sparse.CSR
	Observations *Vocab
	Items        *Vocab
}

// Builder accumulates (observation, item, count) events.
type Builder struct {
	obs      *Vocab
	items    *Vocab
	triplets []sparse.Triplet
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{obs: New(), items: New()}
}

// Add records count occurrences of item in observation. Repeated events for
// the same pair are summed. Empty labels and non-positive counts are ignored.
func (b *Builder) Add(observation, item string, count float64) {
	if observation == "" || item == "" || count <= 0 {
		return
	}
	b.triplets = append(b.triplets, sparse.Triplet{
		Row:   b.obs.Add(observation),
		Col:   b.items.Add(item),
		Value: count,
	})
}

// AddAll records one occurrence of each item in observation.
func (b *Builder) AddAll(observation string, items []string) {
	for _, it := range items {
		b.Add(observation, it, 1)
	}
}

// Build assembles the sparse matrix.
func (b *Builder) Build() Matrix {
	return Matrix{
		M:            sparse.FromTriplets(b.obs.Len(), b.items.Len(), b.triplets),
		Observations: b.obs,
		Items:        b.items,
	}
}
