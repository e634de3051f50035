package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
	"github.com/pdtgct/music-fingerprint/internal/similarity"
)

var (
	matchEQ    bool
	matchNeq   bool
	matchMatch bool
)

var matchCmd = &cobra.Command{
	Use:   "match <a> <b>",
	Short: "Compute the CPFM similarity score between two records, or test a predicate",
	Long: `match parses two text-form records and reports their MatchCPFM score.

With --eq/--neq/--match, it instead evaluates the corresponding predicate
(IsEq/IsNeq/IsMatch) and exits non-zero when the predicate is false, so
it can be used directly in scripts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		aText, err := readTextArg(args[0])
		if err != nil {
			return err
		}
		bText, err := readTextArg(args[1])
		if err != nil {
			return err
		}
		a, err := fingerprint.Parse(aText)
		if err != nil {
			return fmt.Errorf("fpctl: parse a: %w", err)
		}
		b, err := fingerprint.Parse(bText)
		if err != nil {
			return fmt.Errorf("fpctl: parse b: %w", err)
		}

		switch {
		case matchEQ:
			return reportPredicate("eq", similarity.IsEq(a, b))
		case matchNeq:
			return reportPredicate("neq", similarity.IsNeq(a, b))
		case matchMatch:
			return reportPredicate("match", similarity.IsMatch(a, b))
		default:
			score := similarity.MatchCPFM(a, b)
			fmt.Printf("%.6f\n", score)
			return nil
		}
	},
}

func init() {
	matchCmd.Flags().BoolVar(&matchEQ, "eq", false, "Test the EQ predicate instead of printing a score")
	matchCmd.Flags().BoolVar(&matchNeq, "neq", false, "Test the NEQ predicate instead of printing a score")
	matchCmd.Flags().BoolVar(&matchMatch, "match", false, "Test the MATCH predicate instead of printing a score")
}

func reportPredicate(name string, ok bool) error {
	fmt.Printf("%s=%t\n", name, ok)
	if !ok {
		return fmt.Errorf("fpctl: %s predicate is false", name)
	}
	return nil
}
