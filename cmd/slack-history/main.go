package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via ldflags.
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "slack-history",
	Short: "Print a Slack channel's top-level messages for one day",
	Long: `slack-history fetches the workspace user and channel directories, resolves the
configured channels (default "daily-logs") and prints their top-level messages
posted between yesterday's and today's midnight. Thread replies are skipped.

The bot token is read from SLACK_BOT_TOKEN (or DFAB_BOT). A .env file in the
working directory is loaded first if present.`,
	Version:       fmt.Sprintf("%s (build %s, %s)", Version, Build, BuildTime),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHistory,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
