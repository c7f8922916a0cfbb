package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner-id>",
	Short: "Delete a learner's mastery data and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", args[0], err)
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Printf("Delete all mastery data for learner %s? [y/N] ", learnerID)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.ToLower(strings.TrimSpace(line)) != "y" {
				fmt.Println("aborted")
				return nil
			}
		}

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		n, err := eng.ResetLearner(cmd.Context(), learnerID)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d rows\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
