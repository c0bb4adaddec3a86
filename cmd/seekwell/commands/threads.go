package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ThreadsCmd lists known workflow threads
var ThreadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List workflow threads and their status",
	Long: `List checkpointed workflow threads, most recently updated first.

Examples:
  seekwell threads
  seekwell threads --limit 5`,
	RunE: runThreads,
}

var threadsLimitFlag int

func init() {
	ThreadsCmd.Flags().IntVar(&threadsLimitFlag, "limit", 20, "Maximum number of threads to show")
}

func runThreads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	checkpoints, err := rt.saver.List(ctx, threadsLimitFlag)
	if err != nil {
		return err
	}
	if len(checkpoints) == 0 {
		pterm.Println(pterm.Gray("No threads yet. Start one with 'seekwell run'."))
		return nil
	}

	rows := pterm.TableData{
		{"Thread", "Status", "Step", "Updated"},
	}
	for _, cp := range checkpoints {
		rows = append(rows, []string{
			cp.ThreadID,
			string(cp.Status),
			cp.Cursor,
			cp.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
