package commands

import (
	"bufio"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/seekwell/seekwell/agent"
	"github.com/seekwell/seekwell/flow"
)

// RunCmd starts a workflow run
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a job search workflow run",
	Long: `Start a new workflow run, or continue one that was interrupted.

Without --thread a fresh thread id is generated. When the run suspends to
ask for your preferences, the question is printed and your answer is read
from stdin; use --no-input to leave the thread suspended instead and answer
later with 'seekwell resume'.

Examples:
  seekwell run                      # New run, interactive
  seekwell run --thread my-search   # Named thread, resumable later
  seekwell run --no-input           # Suspend instead of prompting`,
	RunE: runRun,
}

var (
	runThreadFlag  string
	runNoInputFlag bool
)

func init() {
	RunCmd.Flags().StringVar(&runThreadFlag, "thread", "", "Thread id (generated when omitted)")
	RunCmd.Flags().BoolVar(&runNoInputFlag, "no-input", false, "Do not prompt on stdin; leave the run suspended")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	threadID := runThreadFlag
	if threadID == "" {
		threadID = uuid.NewString()
	}
	pterm.Printf("%s %s\n", pterm.Gray("Thread:"), pterm.LightMagenta(threadID))

	outcome, err := rt.engine.Start(ctx, threadID, agent.WorkflowState{})
	if err != nil {
		return err
	}

	for outcome.Suspended() {
		if runNoInputFlag {
			pterm.Println(pterm.Yellow(outcome.Prompt))
			pterm.Printf("Run is suspended. Answer with: seekwell resume %s \"<your answer>\"\n", threadID)
			return nil
		}
		answer, err := promptLine(outcome.Prompt)
		if err != nil {
			return err
		}
		outcome, err = rt.engine.Resume(ctx, threadID, answer)
		if err != nil {
			return err
		}
	}

	return reportOutcome(outcome)
}

func promptLine(prompt string) (string, error) {
	pterm.Println(pterm.Yellow(prompt))
	pterm.Print(">> ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func reportOutcome(outcome *flow.Outcome[agent.WorkflowState]) error {
	if outcome.State.Result == agent.NoJobsMessage {
		pterm.Println(pterm.Yellow(agent.NoJobsMessage))
		return nil
	}
	pterm.Printf("%s %s\n", pterm.LightGreen("✓"), pterm.White("Run completed"))
	return nil
}
