package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
	"github.com/lexloop/lexloop/internal/feedback"
)

var rejectCmd = &cobra.Command{
	Use:   "reject <concept-id> <category>",
	Short: "Record a reviewer rejection of generated content",
	Long: `Record a reviewer rejection of generated content for a concept.

Categories: incorrect-match, incorrect-feature, poor-localization,
false-positive, duplicate, low-quality, other.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := feedback.ParseCategory(args[1])
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")
		reviewerStr, _ := cmd.Flags().GetString("reviewer")
		reviewerID := uuid.Nil
		if reviewerStr != "" {
			reviewerID, err = uuid.Parse(reviewerStr)
			if err != nil {
				return fmt.Errorf("invalid reviewer id %q: %w", reviewerStr, err)
			}
		}

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		if err := eng.RecordRejection(cmd.Context(), args[0], category, note, reviewerID); err != nil {
			return err
		}

		conf, err := eng.Feedback.Confidence(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("rejection recorded; concept confidence now %.2f\n", conf)

		hints, err := eng.Feedback.EnhancementHints(cmd.Context(), args[0])
		if err == nil && len(hints) > 0 {
			fmt.Println("active generation hints:")
			for _, h := range hints {
				fmt.Printf("  - %s\n", h)
			}
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <concept-id>",
	Short: "Record a reviewer approval of generated content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		if err := eng.RecordApproval(cmd.Context(), args[0]); err != nil {
			return err
		}
		conf, err := eng.Feedback.Confidence(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("approval recorded; concept confidence now %.2f\n", conf)
		return nil
	},
}

func init() {
	rejectCmd.Flags().String("note", "", "Free-form reviewer note")
	rejectCmd.Flags().String("reviewer", "", "Reviewer UUID")
}
