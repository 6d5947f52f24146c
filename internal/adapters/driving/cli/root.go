// Package cli implements the meetsync command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/meetsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "meetsync",
	Short: "Meeting automation: calendar sync, dashboard API, proposal drafts",
	Long: `Meetsync pulls upcoming events from Google Calendar, classifies them
(external attendees, importance, counterparty company name), stores them
in Postgres and serves them to the dashboard. For important meetings it
can draft a sales proposal via Gemini or delegate drafting to an n8n
workflow.

Examples:
  # Authenticate with Google Calendar (interactive)
  meetsync auth login

  # Run one sync and print the report
  meetsync sync

  # Run the HTTP API with the periodic sync scheduler
  meetsync serve`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "",
		"config directory (default ~/.meetsync)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the build-time version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
