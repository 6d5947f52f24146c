package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync upcoming calendar events once and print the report",
	Long: `Fetches the configured upcoming window from Google Calendar,
classifies each event and upserts the survivors into the store.

Exits non-zero when authentication or the calendar fetch fails.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	app, err := newApp(true)
	if err != nil {
		return err
	}
	defer app.Close()

	cmd.Println("Syncing calendar...")

	report, err := app.sync.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Fetched %d events: %d synced, %d skipped, %d errors\n",
		report.EventsCount, report.SyncedCount, report.SkippedCount, report.ErrorCount)
	cmd.Printf("Last sync: %s\n", report.LastSync.Format(time.RFC3339))

	if report.ErrorCount > 0 {
		cmd.Println("Some events failed to persist; re-run sync to retry.")
	}
	return nil
}
