package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run cache and mastery maintenance",
	Long:  "Evicts expired cache entries, enforces the cache size limit, and prunes mastery records that never saw an exposure. Runs once by default; --daemon keeps sweeping on the configured interval.",
	RunE: func(cmd *cobra.Command, args []string) error {
		daemon, _ := cmd.Flags().GetBool("daemon")

		eng, log, err := openEngine(cmd, app.Options{SkipProvider: true})
		if err != nil {
			return err
		}
		defer log.Sync()
		defer eng.Close()

		if !daemon {
			eng.Sweeper.RunOnce()
			fmt.Println("sweep complete")
			return nil
		}

		if err := eng.Sweeper.Start(); err != nil {
			return err
		}
		defer eng.Sweeper.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func init() {
	sweepCmd.Flags().Bool("daemon", false, "Keep sweeping on the configured interval until interrupted")
}
