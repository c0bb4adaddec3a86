package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seekwell/seekwell/cmd/seekwell/commands"
	"github.com/seekwell/seekwell/logger"
)

var rootCmd = &cobra.Command{
	Use:   "seekwell",
	Short: "seekwell - Job search workflow agent",
	Long: `seekwell - Durable job search workflow agent.

seekwell runs a checkpointed workflow that collects your job preferences,
searches Naukri and Hirist, scores the results against your profile, and
renders the matches into a single HTML page. Runs suspend when they need
your input and resume exactly where they left off, even across restarts.

Available commands:
  run     - Start a new workflow run (or continue an interrupted one)
  resume  - Answer a suspended run's pending question
  threads - List known workflow threads and their status

Examples:
  seekwell run                          # Start; answers are requested on stdin
  seekwell run --thread my-search       # Start with a chosen thread id
  seekwell resume my-search "3 yoe..."  # Answer a suspended thread
  seekwell threads                      # Show thread statuses`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var jsonLogs bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON instead of console output")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Path to a seekwell.toml config file")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ResumeCmd)
	rootCmd.AddCommand(commands.ThreadsCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
