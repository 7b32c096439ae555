package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/cooccur/pkg/cooccur/logging"
	"github.com/cognicore/cooccur/pkg/cooccur/store"
	"github.com/cognicore/cooccur/pkg/cooccur/store/cached"
	"github.com/cognicore/cooccur/pkg/cooccur/store/sqlite"
)

var (
	verbose bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "cooccur",
	Short: "Cooccurrence indicators scored with the log-likelihood ratio",
	Long: `cooccur finds, for every item, the other items it appears with more
often than chance would explain, using the G² log-likelihood ratio test.

Examples:
  cooccur indicators --input events.jsonl --db runs.db
  cooccur neighbors --db runs.db --item sku-42
  cooccur compare --a corpus-a.json --b corpus-b.json`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Log as JSON")
	rootCmd.AddCommand(indicatorsCmd, neighborsCmd, compareCmd)
}

func newLogger(w io.Writer) *logging.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if jsonLog {
		return logging.NewJSONLogger(w, level)
	}
	return logging.NewTextLogger(w, level)
}

func openStore(ctx context.Context, path string) (store.Store, error) {
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	c, err := cached.New(st, 0)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
