package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var exposeCmd = &cobra.Command{
	Use:   "expose <learner-id> <concept-id>",
	Short: "Record one exercise outcome for a learner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", args[0], err)
		}
		correct, _ := cmd.Flags().GetBool("correct")
		ms, _ := cmd.Flags().GetInt("ms")

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		rec, err := eng.RecordExposure(cmd.Context(), learnerID, args[1], correct, ms)
		if err != nil {
			return err
		}

		next := "unscheduled"
		if rec.NextReviewAt != nil {
			next = rec.NextReviewAt.Local().Format(time.RFC3339)
		}
		fmt.Printf("concept:      %s\n", rec.ConceptID)
		fmt.Printf("mastery:      %.3f (tier %d)\n", rec.MasteryScore, rec.ConfidenceTier)
		fmt.Printf("accuracy:     %.0f%% over %d exposures\n", rec.Accuracy()*100, rec.ExposureCount)
		fmt.Printf("streak:       %d\n", rec.LastOutcomeStreak)
		fmt.Printf("next review:  %s\n", next)
		return nil
	},
}

func init() {
	exposeCmd.Flags().Bool("correct", false, "The learner answered correctly")
	exposeCmd.Flags().Int("ms", 0, "Response time in milliseconds")
}
