package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/seekwell/seekwell/errors"
)

// ResumeCmd answers a suspended thread
var ResumeCmd = &cobra.Command{
	Use:   "resume <thread-id> <answer>",
	Short: "Answer a suspended run and continue it",
	Long: `Supply the pending answer for a suspended thread and drive the run
to completion (or its next suspension).

Examples:
  seekwell resume my-search "golang dev, 3 yoe, Bangalore, remote, 25 LPA"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	threadID := args[0]
	answer := strings.Join(args[1:], " ")

	outcome, err := rt.engine.Resume(ctx, threadID, answer)
	if err != nil {
		switch {
		case errors.IsNoSuchThread(err):
			return errors.Newf("no thread %q; start one with 'seekwell run --thread %s'", threadID, threadID)
		case errors.IsNotSuspended(err):
			return errors.Newf("thread %q is not waiting for input", threadID)
		}
		return err
	}
	if outcome.Suspended() {
		return errors.Newf("thread %q suspended again: %s", threadID, outcome.Prompt)
	}
	return reportOutcome(outcome)
}
