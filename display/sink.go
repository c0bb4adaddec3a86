// Package display delivers finished workflow results to the user: an HTML
// artifact on disk and a ranked terminal report.
package display

import (
	"context"

	"github.com/seekwell/seekwell/scrape"
)

// RankedJob pairs a job record with the score it earned during evaluation.
type RankedJob struct {
	scrape.JobRecord
	Score int `json:"score"`
}

// Report is the deliverable of a completed run. Result holds the rendered
// page (or the canned no-results message); Jobs holds the postings that
// cleared the score threshold, in their ranked order.
type Report struct {
	Result string      `json:"result"`
	Jobs   []RankedJob `json:"jobs"`
}

// Sink receives the final report of a run
type Sink interface {
	Deliver(ctx context.Context, report *Report) error
}
