package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/gist"
	"github.com/pdtgct/music-fingerprint/internal/rtree"
)

var searchStrategy string

var searchCmd = &cobra.Command{
	Use:   "search <text-form-or-file>",
	Short: "Search the configured index for records matching a strategy",
	Long: `search descends the R-tree looking for entries consistent with the
query record under --strategy (eq, neq or match — strategy numbers 3,
12 and 6 respectively).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(args[0])
		if err != nil {
			return err
		}
		rec, err := fingerprint.Parse(text)
		if err != nil {
			return fmt.Errorf("fpctl: parse: %w", err)
		}
		strategy, err := parseStrategyFlag(searchStrategy)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		tree, err := openTree(ctx)
		if err != nil {
			return err
		}
		defer tree.Close(ctx)

		hits, err := tree.Search(ctx, rec, strategy)
		if err != nil {
			return fmt.Errorf("fpctl: search: %w", err)
		}
		return printSearchHits(hits)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchStrategy, "strategy", "eq", "Search strategy: eq, neq or match")
}

func parseStrategyFlag(s string) (gist.Strategy, error) {
	switch s {
	case "eq":
		return gist.StrategyEQ, nil
	case "neq":
		return gist.StrategyNeq, nil
	case "match":
		return gist.StrategyMatch, nil
	default:
		return 0, fmt.Errorf("fpctl: --strategy must be eq, neq or match, got %q", s)
	}
}

type searchHitView struct {
	PageID string  `json:"page_id"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

func printSearchHits(hits []rtree.SearchHit) error {
	views := make([]searchHitView, 0, len(hits))
	for _, h := range hits {
		text, err := fingerprint.Format(h.Record)
		if err != nil {
			return fmt.Errorf("fpctl: format hit: %w", err)
		}
		views = append(views, searchHitView{PageID: h.PageID, Score: h.Score, Text: text})
	}

	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	if len(views) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, v := range views {
		fmt.Printf("%s score=%.4f %s\n", v.PageID, v.Score, v.Text)
	}
	return nil
}
