// Package config loads YAML configuration for indicator runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/cooccur/pkg/cooccur/indicator"
	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
)

// Config is the YAML configuration of an indicator run.
type Config struct {
	Engine Engine `yaml:"engine"`
	Text   Text   `yaml:"text"`
	Output Output `yaml:"output"`
}

// Engine configures capping and scoring.
type Engine struct {
	RowCap    int    `yaml:"row_cap"`
	ItemCap   int    `yaml:"item_cap"`
	CopyInput bool   `yaml:"copy_input"`
	Workers   int    `yaml:"workers"`
	Seed      uint64 `yaml:"seed"`
}

// Text configures word cooccurrence over documents.
type Text struct {
	Window        int      `yaml:"window"`
	Stopwords     []string `yaml:"stopwords"`
	StopwordsFile string   `yaml:"stopwords_file"`
}

// Output configures reporting and persistence.
type Output struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
	DB       string  `yaml:"db"`
	Snapshot string  `yaml:"snapshot"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: Engine{
			RowCap:  indicator.DefaultRowCap,
			Workers: 1,
		},
		Text: Text{
			Window: 5,
		},
		Output: Output{
			TopK: 10,
		},
	}
}

// Load reads a YAML file on top of Default and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings no run can use. Caps may be ≤ 0 (disabled).
func (c Config) Validate() error {
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1, got %d: %w", c.Engine.Workers, internalerr.ErrInvalidConfig)
	}
	if c.Text.Window < 0 {
		return fmt.Errorf("text.window must not be negative, got %d: %w", c.Text.Window, internalerr.ErrInvalidConfig)
	}
	if c.Output.TopK < 0 {
		return fmt.Errorf("output.top_k must not be negative, got %d: %w", c.Output.TopK, internalerr.ErrInvalidConfig)
	}
	return nil
}

// EngineOptions maps the engine section to indicator options.
func (c Config) EngineOptions() []indicator.Option {
	return []indicator.Option{
		indicator.WithRowCap(c.Engine.RowCap),
		indicator.WithItemCap(c.Engine.ItemCap),
		indicator.WithCopyInput(c.Engine.CopyInput),
		indicator.WithWorkers(c.Engine.Workers),
		indicator.WithSeed(c.Engine.Seed),
	}
}

// Stoplist represents a stopword list file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// AllStopwords returns the inline stopwords plus those of StopwordsFile.
func (t Text) AllStopwords() ([]string, error) {
	words := append([]string(nil), t.Stopwords...)
	if t.StopwordsFile == "" {
		return words, nil
	}
	sl, err := LoadStoplist(t.StopwordsFile)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}
	return append(words, sl.Terms...), nil
}
