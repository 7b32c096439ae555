// Package cooccur wires event loading, the indicator engine and persistence
// into a single pipeline.
package cooccur

import (
	"context"
	"fmt"

	"github.com/cognicore/cooccur/internal/events"
	"github.com/cognicore/cooccur/pkg/cooccur/config"
	"github.com/cognicore/cooccur/pkg/cooccur/indicator"
	"github.com/cognicore/cooccur/pkg/cooccur/logging"
	"github.com/cognicore/cooccur/pkg/cooccur/snapshot"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
	"github.com/cognicore/cooccur/pkg/cooccur/text"
	"github.com/cognicore/cooccur/pkg/cooccur/vocab"
)

// Pipeline is the main facade
type Pipeline struct {
	cfg      config.Config
	store    store.Store
	log      *logging.Logger
	windower *text.Windower
}

// Options configures a Pipeline
type Options struct {
	Config config.Config
	// Store, if set, receives every run.
	Store  store.Store
	Logger *logging.Logger
}

// New creates a Pipeline. The stopword file named in the config, if any, is
// read here.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	stops, err := opts.Config.Text.AllStopwords()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:   opts.Config,
		store: opts.Store,
		log:   logging.OrNoop(opts.Logger),
		windower: &text.Windower{
			Tokenizer: text.NewTokenizer(stops),
			Size:      opts.Config.Text.Window,
		},
	}, nil
}

// Indicator is one associated item in a report.
type Indicator struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// ItemIndicators lists the indicators of one item.
type ItemIndicators struct {
	Item       string      `json:"item"`
	Count      float64     `json:"count"`
	Indicators []Indicator `json:"indicators"`
}

// Report is the outcome of a run.
type Report struct {
	RunID        string           `json:"run_id,omitempty"`
	Observations int              `json:"observations"`
	Items        int              `json:"items"`
	Pairs        int              `json:"pairs"`
	Indicators   []ItemIndicators `json:"indicators"`
}

// Build turns events into a labelled observation×item matrix. Interaction
// events add to their observation; document events are tokenized and cut
// into windows.
func (p *Pipeline) Build(evs []events.Event) vocab.Matrix {
	b := vocab.NewBuilder()
	for _, ev := range evs {
		if ev.IsDocument() {
			p.windower.Observe(b, ev.ID, ev.Text)
			continue
		}
		b.Add(ev.Observation, ev.Item, ev.Weight())
	}
	return b.Build()
}

// Run computes indicators for m, saves the run and snapshot when configured,
// and reports the top indicators of every item that has any.
func (p *Pipeline) Run(ctx context.Context, m vocab.Matrix) (*Report, error) {
	opts := append(p.cfg.EngineOptions(), indicator.WithLogger(p.log))
	res, err := indicator.New(opts...).Run(ctx, m.M)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	log := p.log
	report := &Report{
		Observations: res.Stats.Rows,
		Items:        res.Stats.Items,
		Pairs:        res.Stats.Pairs,
	}

	if p.store != nil {
		id, err := p.store.SaveRun(ctx, store.Run{
			Config:    p.describe(),
			Rows:      res.Stats.Rows,
			Items:     m.Items.Labels(),
			Marginals: res.Marginals,
			Scores:    res.Scores,
		})
		if err != nil {
			p.log.LogSave(ctx, "store", err)
			return nil, fmt.Errorf("save run: %w", err)
		}
		report.RunID = id
		log = log.WithRun(id)
		log.LogSave(ctx, "store", nil)
	}

	if path := p.cfg.Output.Snapshot; path != "" {
		err := snapshot.SaveFile(path, snapshot.Snapshot{Items: m.Items.Labels(), Scores: res.Scores})
		log.LogSave(ctx, path, err)
		if err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
	}

	for i := 0; i < m.Items.Len(); i++ {
		ns := indicator.Neighbors(res.Scores, i, p.cfg.Output.TopK, p.cfg.Output.MinScore)
		if len(ns) == 0 {
			continue
		}
		entry := ItemIndicators{
			Item:       m.Items.Label(i),
			Count:      res.Marginals[i],
			Indicators: make([]Indicator, len(ns)),
		}
		for k, n := range ns {
			entry.Indicators[k] = Indicator{Item: m.Items.Label(n.Item), Score: n.Score}
		}
		report.Indicators = append(report.Indicators, entry)
	}
	return report, nil
}

// RunFile loads a JSONL file and runs it.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Report, error) {
	evs, err := events.LoadJSONL(path, p.log)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, p.Build(evs))
}

func (p *Pipeline) describe() string {
	e := p.cfg.Engine
	return fmt.Sprintf("row_cap=%d item_cap=%d seed=%d window=%d", e.RowCap, e.ItemCap, e.Seed, p.cfg.Text.Window)
}
