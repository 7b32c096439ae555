package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
)

var (
	nbDB   string
	nbRun  string
	nbItem []string
	nbK    int
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors",
	Short: "Show the strongest indicators of items in a stored run",
	RunE:  runNeighbors,
}

func init() {
	f := neighborsCmd.Flags()
	f.StringVar(&nbDB, "db", "", "SQLite database (required)")
	f.StringVar(&nbRun, "run", "", "Run ID (default: latest run)")
	f.StringSliceVar(&nbItem, "item", nil, "Item label, repeatable (required)")
	f.IntVar(&nbK, "k", 10, "Indicators per item")
	_ = neighborsCmd.MarkFlagRequired("db")
	_ = neighborsCmd.MarkFlagRequired("item")
}

type neighborsOut struct {
	Run        string                `json:"run"`
	Item       string                `json:"item"`
	Indicators []neighborsOutElement `json:"indicators"`
}

type neighborsOutElement struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, nbDB)
	if err != nil {
		return err
	}
	defer st.Close()

	runID := nbRun
	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs in %s: %w", nbDB, internalerr.ErrNotFound)
		}
		runID = runs[0].ID
	} else if _, err := st.GetRun(ctx, runID); err != nil {
		return err
	}

	out := make([]neighborsOut, 0, len(nbItem))
	for _, item := range nbItem {
		ns, err := st.TopNeighbors(ctx, runID, item, nbK)
		if err != nil {
			return err
		}
		entry := neighborsOut{Run: runID, Item: item, Indicators: []neighborsOutElement{}}
		for _, n := range ns {
			entry.Indicators = append(entry.Indicators, neighborsOutElement{Item: n.Item, Score: n.Score})
		}
		out = append(out, entry)
	}
	return printJSON(cmd.OutOrStdout(), out)
}
