package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/cooccur/pkg/cooccur"
	"github.com/cognicore/cooccur/pkg/cooccur/config"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
)

var (
	indInput    string
	indConfig   string
	indDB       string
	indSnapshot string
	indRowCap   int
	indItemCap  int
	indWorkers  int
	indSeed     uint64
	indTopK     int
	indMinScore float64
	indWindow   int
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Compute cooccurrence indicators from a JSONL event file",
	Long: `Compute cooccurrence indicators from a JSONL file.

Each line is either an interaction
  {"observation": "user-1", "item": "sku-9", "count": 2}
or a document whose sliding word windows become observations
  {"id": "doc-1", "text": "..."}

Flags override the matching settings of --config.`,
	RunE: runIndicators,
}

func init() {
	f := indicatorsCmd.Flags()
	f.StringVarP(&indInput, "input", "i", "", "JSONL event file (required)")
	f.StringVarP(&indConfig, "config", "c", "", "YAML configuration file")
	f.StringVar(&indDB, "db", "", "SQLite database to store the run in")
	f.StringVar(&indSnapshot, "snapshot", "", "Write the score matrix to this file")
	f.IntVar(&indRowCap, "row-cap", 0, "Max items kept per observation (≤0 disables)")
	f.IntVar(&indItemCap, "item-cap", 0, "Max observations kept per item (≤0 disables)")
	f.IntVar(&indWorkers, "workers", 1, "Goroutines scoring pairs")
	f.Uint64Var(&indSeed, "seed", 0, "Seed for down-sampling")
	f.IntVarP(&indTopK, "top-k", "k", 0, "Indicators reported per item")
	f.Float64Var(&indMinScore, "min-score", 0, "Only report scores above this")
	f.IntVar(&indWindow, "window", 0, "Words per window for text documents (0 = whole document)")
	_ = indicatorsCmd.MarkFlagRequired("input")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if indConfig != "" {
		var err error
		if cfg, err = config.Load(indConfig); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("row-cap") {
		cfg.Engine.RowCap = indRowCap
	}
	if f.Changed("item-cap") {
		cfg.Engine.ItemCap = indItemCap
	}
	if f.Changed("workers") {
		cfg.Engine.Workers = indWorkers
	}
	if f.Changed("seed") {
		cfg.Engine.Seed = indSeed
	}
	if f.Changed("top-k") {
		cfg.Output.TopK = indTopK
	}
	if f.Changed("min-score") {
		cfg.Output.MinScore = indMinScore
	}
	if f.Changed("window") {
		cfg.Text.Window = indWindow
	}
	if f.Changed("db") {
		cfg.Output.DB = indDB
	}
	if f.Changed("snapshot") {
		cfg.Output.Snapshot = indSnapshot
	}
	return cfg, cfg.Validate()
}

func runIndicators(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cooccur.Options{
		Config: cfg,
		Logger: newLogger(cmd.ErrOrStderr()),
	}
	if cfg.Output.DB != "" {
		var st store.Store
		if st, err = openStore(ctx, cfg.Output.DB); err != nil {
			return err
		}
		defer st.Close()
		opts.Store = st
	}

	p, err := cooccur.New(opts)
	if err != nil {
		return err
	}
	report, err := p.RunFile(ctx, indInput)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
