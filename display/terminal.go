package display

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
)

// TerminalReport prints the ranked jobs to the terminal.
type TerminalReport struct{}

func NewTerminalReport() *TerminalReport {
	return &TerminalReport{}
}

func (s *TerminalReport) Deliver(ctx context.Context, report *Report) error {
	if len(report.Jobs) == 0 {
		pterm.Println(pterm.Yellow(report.Result))
		return nil
	}

	pterm.Printf("%s %s\n\n",
		pterm.LightGreen("✓"),
		pterm.White("Found "+strconv.Itoa(len(report.Jobs))+" matching jobs"))

	rows := pterm.TableData{
		{"Score", "Title", "Company", "Location", "Experience", "Salary"},
	}
	for _, job := range report.Jobs {
		rows = append(rows, []string{
			strconv.Itoa(job.Score),
			job.Title,
			job.Company,
			job.Location,
			job.ExperienceText,
			job.Salary,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	for _, job := range report.Jobs {
		if job.URL != "" {
			pterm.Printf("  %s %s\n", pterm.Gray("→"), pterm.LightBlue(job.URL))
		}
	}
	return nil
}
