// Package agent assembles the job-search workflow: collect the seeker's
// preferences, build a search query, scrape job boards, rank by experience,
// score in parallel batches, and render the surviving postings.
package agent

import (
	"regexp"
	"strconv"

	"github.com/seekwell/seekwell/scrape"
)

// WorkflowState is the full state carried through a run. It must round-trip
// through encoding/json unchanged so checkpoints can restore it.
type WorkflowState struct {
	Initialized   bool               `json:"initialized"`
	Preference    map[string]any     `json:"preference,omitempty"`
	SearchQuery   *scrape.Query      `json:"search_query,omitempty"`
	ScrapedJobs   []scrape.JobRecord `json:"scraped_jobs,omitempty"`
	EvaluatedJobs []Evaluation       `json:"evaluated_jobs,omitempty"`
	Result        string             `json:"result,omitempty"`
}

// Evaluation is one scored job. Scores are on a 0-10 scale.
type Evaluation struct {
	JobID string `json:"job_id"`
	Score int    `json:"score"`
}

// JobSummary is the slice of a job record that scoring needs
type JobSummary struct {
	JobID       string `json:"job_id"`
	Description string `json:"description"`
}

// BatchTask is the isolated substate handed to one scoring batch. It carries
// only its own chunk; batches never see the full workflow state.
type BatchTask struct {
	Jobs       []JobSummary   `json:"jobs"`
	Preference map[string]any `json:"preference"`
}

var experiencePattern = regexp.MustCompile(`\d+`)

// unparseableExperience sorts jobs with no parseable experience last
const unparseableExperience = 100

// extractExperienceYears pulls the first integer out of a free-text
// experience string like "4-8 Yrs".
func extractExperienceYears(text string) int {
	match := experiencePattern.FindString(text)
	if match == "" {
		return unparseableExperience
	}
	years, err := strconv.Atoi(match)
	if err != nil {
		return unparseableExperience
	}
	return years
}
