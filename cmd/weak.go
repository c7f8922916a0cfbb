package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var weakCmd = &cobra.Command{
	Use:   "weak <learner-id>",
	Short: "List the learner's weakest concepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", args[0], err)
		}
		limit, _ := cmd.Flags().GetInt("limit")

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		recs, err := eng.WeakConcepts(cmd.Context(), learnerID, limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No weak concepts. Nice.")
			return nil
		}

		fmt.Printf("%-24s  %-8s  %-9s  %s\n", "Concept", "Mastery", "Accuracy", "Streak")
		fmt.Println(strings.Repeat("─", 56))
		for _, rec := range recs {
			fmt.Printf("%-24s  %-8.3f  %8.0f%%  %d\n",
				rec.ConceptID, rec.MasteryScore, rec.Accuracy()*100, rec.LastOutcomeStreak)
		}
		return nil
	},
}

func init() {
	weakCmd.Flags().IntP("limit", "n", 20, "Maximum concepts to list")
}
