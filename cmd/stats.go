package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats <learner-id>",
	Short: "Show a learner's mastery statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", args[0], err)
		}

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		ctx := cmd.Context()
		totals, err := eng.Results.Totals(ctx, learnerID)
		if err != nil {
			return err
		}
		recs, err := eng.Mastery.ByLearner(ctx, learnerID)
		if err != nil {
			return err
		}

		if totals.Attempts == 0 && len(recs) == 0 {
			fmt.Println("No history for this learner yet.")
			return nil
		}

		fmt.Printf("Attempts:  %d\n", totals.Attempts)
		fmt.Printf("Correct:   %d (%.0f%%)\n", totals.Correct, totals.Accuracy()*100)
		fmt.Printf("Concepts:  %d tracked\n", len(recs))

		tierCounts := make(map[int]int)
		for _, rec := range recs {
			tierCounts[rec.ConfidenceTier]++
		}
		fmt.Println("\nTier distribution")
		fmt.Println(strings.Repeat("─", 32))
		for tier := 1; tier <= 5; tier++ {
			fmt.Printf("tier %d  %s (%d)\n", tier, strings.Repeat("#", tierCounts[tier]), tierCounts[tier])
		}

		sort.Slice(recs, func(i, j int) bool { return recs[i].MasteryScore < recs[j].MasteryScore })
		n := len(recs)
		if n > 5 {
			n = 5
		}
		fmt.Println("\nWeakest concepts")
		fmt.Println(strings.Repeat("─", 32))
		for _, rec := range recs[:n] {
			fmt.Printf("%-24s  %.3f\n", rec.ConceptID, rec.MasteryScore)
		}
		return nil
	},
}
