package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
	"github.com/lexloop/lexloop/internal/store"
)

// seedEntry is the JSON shape of one concept in a catalog file.
type seedEntry struct {
	ID    string `json:"id"`
	Term  string `json:"term"`
	Topic string `json:"topic"`
	Level string `json:"level"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.json>",
	Short: "Load a concept catalog into the store",
	Long:  "Loads concepts from a JSON array of {id, term, topic, level} objects. Existing concepts are updated in place; reviewer confidence is preserved.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		var entries []seedEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("parse catalog: %w", err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("catalog %s is empty", args[0])
		}

		concepts := make([]*store.Concept, 0, len(entries))
		for i, e := range entries {
			if e.ID == "" || e.Term == "" {
				return fmt.Errorf("catalog entry %d is missing id or term", i)
			}
			concepts = append(concepts, &store.Concept{
				ID:    e.ID,
				Term:  e.Term,
				Topic: e.Topic,
				Level: e.Level,
			})
		}

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		if err := eng.Concepts.Seed(cmd.Context(), concepts); err != nil {
			return err
		}
		fmt.Printf("seeded %d concepts\n", len(concepts))
		return nil
	},
}
