package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var dueCmd = &cobra.Command{
	Use:   "due <learner-id>",
	Short: "List concepts due for review",
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

		recs, err := eng.DueForReview(cmd.Context(), learnerID, limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("Nothing due for review.")
			return nil
		}

		fmt.Printf("%-24s  %-8s  %-5s  %s\n", "Concept", "Mastery", "Tier", "Due")
		fmt.Println(strings.Repeat("─", 64))
		now := time.Now()
		for _, rec := range recs {
			overdue := ""
			if rec.NextReviewAt != nil && now.Sub(*rec.NextReviewAt) > time.Hour {
				overdue = fmt.Sprintf(" (overdue %s)", now.Sub(*rec.NextReviewAt).Round(time.Hour))
			}
			fmt.Printf("%-24s  %-8.3f  %-5d  %s%s\n",
				rec.ConceptID, rec.MasteryScore, rec.ConfidenceTier,
				rec.NextReviewAt.Local().Format("2006-01-02 15:04"), overdue)
		}
		return nil
	},
}

func init() {
	dueCmd.Flags().IntP("limit", "n", 20, "Maximum concepts to list")
}
