package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/cooccur/internal/events"
	"github.com/cognicore/cooccur/pkg/cooccur/compare"
)

var (
	cmpA   string
	cmpB   string
	cmpTop int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Rank keys by how over-represented they are in one frequency table versus another",
	Long: `Compare two JSON objects mapping keys to counts. Each key gets the signed
G² score of its count against the table totals: positive when the key is
more frequent in --a than in --b.`,
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&cmpA, "a", "", "First frequency file (required)")
	f.StringVar(&cmpB, "b", "", "Second frequency file (required)")
	f.IntVarP(&cmpTop, "top", "n", 0, "Only print the n highest and n lowest keys (0 = all)")
	_ = compareCmd.MarkFlagRequired("a")
	_ = compareCmd.MarkFlagRequired("b")
}

type compareOut struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := events.LoadFrequencies(cmpA)
	if err != nil {
		return err
	}
	b, err := events.LoadFrequencies(cmpB)
	if err != nil {
		return err
	}

	ranked := compare.Ranked(compare.Compare(a, b))
	if cmpTop > 0 && len(ranked) > 2*cmpTop {
		ranked = append(ranked[:cmpTop:cmpTop], ranked[len(ranked)-cmpTop:]...)
	}

	out := make([]compareOut, len(ranked))
	for i, r := range ranked {
		out[i] = compareOut{Key: r.Key, Score: r.Score}
	}
	return printJSON(cmd.OutOrStdout(), out)
}
