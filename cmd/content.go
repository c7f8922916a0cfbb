package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
	"github.com/lexloop/lexloop/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content <learner-id>",
	Short: "Generate (or fetch cached) exercises for a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", args[0], err)
		}
		typeStr, _ := cmd.Flags().GetString("type")
		exerciseType, ok := content.ParseExerciseType(typeStr)
		if !ok {
			return fmt.Errorf("unknown exercise type %q (flashcard, multiple_choice, cloze, matching)", typeStr)
		}

		eng, log, err := openEngine(cmd, app.Options{})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		res, err := eng.RequestContent(cmd.Context(), learnerID, exerciseType)
		if err != nil {
			return err
		}

		source := "generated"
		if res.CacheHit {
			source = "cache"
		}
		fmt.Fprintf(os.Stderr, "level=%s difficulty=%d source=%s exercises=%d\n",
			res.Policy.Level, res.Policy.Difficulty, source, len(res.Batch.Exercises))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Batch)
	},
}

func init() {
	contentCmd.Flags().StringP("type", "t", string(content.TypeFlashcard), "Exercise type: flashcard, multiple_choice, cloze, matching")
}
