package agent

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/seekwell/seekwell/display"
	"github.com/seekwell/seekwell/errors"
	"github.com/seekwell/seekwell/flow"
	"github.com/seekwell/seekwell/scrape"
)

// Step names, stable across releases: they appear in checkpoints, so a
// renamed step would strand persisted cursors.
const (
	StepInitialize        = "initialize"
	StepCollectPreference = "collect_preference"
	StepBuildQuery        = "build_query"
	StepScrape            = "scrape"
	StepRefine            = "refine"
	StepScoreBatch        = "score_batch"
	StepRender            = "render"
	StepDeliver           = "deliver"
)

// PreferencePrompt is surfaced to the user when a run suspends for input.
const PreferencePrompt = "Share your profile: designation, years of experience, expected package, location, and preferred job type (Work from office, Remote, Hybrid)."

// NoJobsMessage is the canned result when scraping yields nothing
const NoJobsMessage = "No jobs found matching your criteria."

const (
	defaultPageCount      = 2
	defaultChunkSize      = 10
	defaultScoreThreshold = 5
)

// Options configures a Workflow. Inference is required; the rest default to
// sensible values when zero.
type Options struct {
	Inference      *Inference
	Sources        []scrape.Source
	Sink           display.Sink
	PageCount      int
	ChunkSize      int
	ScoreThreshold int
	Logger         *zap.SugaredLogger
}

// Workflow owns the job-search graph and its collaborators
type Workflow struct {
	inference      *Inference
	sources        []scrape.Source
	sink           display.Sink
	pageCount      int
	chunkSize      int
	scoreThreshold int
	logger         *zap.SugaredLogger
}

func NewWorkflow(opts Options) (*Workflow, error) {
	if opts.Inference == nil {
		return nil, errors.New("workflow requires an inference client")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	w := &Workflow{
		inference:      opts.Inference,
		sources:        opts.Sources,
		sink:           opts.Sink,
		pageCount:      opts.PageCount,
		chunkSize:      opts.ChunkSize,
		scoreThreshold: opts.ScoreThreshold,
		logger:         logger.Named("agent"),
	}
	if w.pageCount <= 0 {
		w.pageCount = defaultPageCount
	}
	if w.chunkSize <= 0 {
		w.chunkSize = defaultChunkSize
	}
	if w.scoreThreshold <= 0 {
		w.scoreThreshold = defaultScoreThreshold
	}
	return w, nil
}

// BuildGraph wires the steps and edges and compiles the result
func (w *Workflow) BuildGraph() (*flow.Graph[WorkflowState], error) {
	g := flow.NewGraph[WorkflowState]()
	g.AddStep(StepInitialize, w.initialize)
	g.AddSuspend(StepCollectPreference, PreferencePrompt, w.collectPreference)
	g.AddStep(StepBuildQuery, w.buildQuery)
	g.AddStep(StepScrape, w.scrapeJobs)
	g.AddStep(StepRefine, w.refineJobs)
	g.AddBatch(StepScoreBatch, w.scoreBatch)
	g.AddStep(StepRender, w.renderResult)
	g.AddStep(StepDeliver, w.deliverResult)

	g.SetEntry(StepInitialize)
	g.AddConditionalEdge(StepInitialize, w.routeAfterInitialize)
	g.AddEdge(StepCollectPreference, StepBuildQuery)
	g.AddEdge(StepBuildQuery, StepScrape)
	g.AddEdge(StepScrape, StepRefine)
	g.AddFanOutEdge(StepRefine, w.fanOutScoring, StepRender, w.mergeEvaluations)
	g.AddEdge(StepRender, StepDeliver)
	g.AddEdge(StepDeliver, flow.End)

	if err := g.Compile(); err != nil {
		return nil, errors.Wrap(err, "failed to compile workflow graph")
	}
	return g, nil
}

func (w *Workflow) initialize(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	state.Initialized = true
	if state.ScrapedJobs == nil {
		state.ScrapedJobs = []scrape.JobRecord{}
	}
	if state.EvaluatedJobs == nil {
		state.EvaluatedJobs = []Evaluation{}
	}
	return state, nil
}

// routeAfterInitialize skips preference collection when the caller seeded
// the run with a preference already.
func (w *Workflow) routeAfterInitialize(state WorkflowState) string {
	if len(state.Preference) > 0 {
		return StepBuildQuery
	}
	return StepCollectPreference
}

func (w *Workflow) collectPreference(ctx context.Context, state WorkflowState, input string) (WorkflowState, error) {
	preference, err := w.inference.ParsePreference(ctx, input)
	if err != nil {
		return state, err
	}
	state.Preference = preference
	return state, nil
}

func (w *Workflow) buildQuery(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	query, err := w.inference.BuildSearchQuery(ctx, state.Preference)
	if err != nil {
		return state, err
	}
	w.logger.Infow("search query ready",
		"role", query.Role, "location", query.Location,
		"work_mode", query.WorkMode, "experience_years", query.ExperienceYears)
	state.SearchQuery = query
	return state, nil
}

func (w *Workflow) scrapeJobs(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	if state.SearchQuery == nil {
		return state, errors.Wrap(errors.ErrValidation, "no search query to scrape with")
	}
	jobs := scrape.SearchAll(ctx, w.sources, *state.SearchQuery, w.pageCount, w.logger)
	w.logger.Infow("scraping finished", "jobs", len(jobs), "sources", len(w.sources))
	state.ScrapedJobs = append(state.ScrapedJobs, jobs...)
	return state, nil
}

// refineJobs sorts scraped jobs by required experience, ascending. Jobs
// whose experience text has no parseable number sort last.
func (w *Workflow) refineJobs(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	sort.SliceStable(state.ScrapedJobs, func(i, j int) bool {
		return extractExperienceYears(state.ScrapedJobs[i].ExperienceText) <
			extractExperienceYears(state.ScrapedJobs[j].ExperienceText)
	})
	return state, nil
}

// fanOutScoring chunks the refined jobs into fixed-size batches, one
// activation each. Zero jobs means zero activations, which skips scoring
// entirely.
func (w *Workflow) fanOutScoring(state WorkflowState) []flow.Activation {
	var activations []flow.Activation
	for start := 0; start < len(state.ScrapedJobs); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(state.ScrapedJobs) {
			end = len(state.ScrapedJobs)
		}
		summaries := make([]JobSummary, 0, end-start)
		for _, job := range state.ScrapedJobs[start:end] {
			summaries = append(summaries, JobSummary{JobID: job.JobID, Description: job.Description})
		}
		activations = append(activations, flow.Activation{
			Step:     StepScoreBatch,
			Substate: BatchTask{Jobs: summaries, Preference: state.Preference},
		})
	}
	return activations
}

func (w *Workflow) scoreBatch(ctx context.Context, substate any) (any, error) {
	task, ok := substate.(BatchTask)
	if !ok {
		return nil, errors.Newf("scoring batch received unexpected substate %T", substate)
	}
	return w.inference.ScoreBatch(ctx, task)
}

func (w *Workflow) mergeEvaluations(state WorkflowState, batchResult any) WorkflowState {
	evaluations, ok := batchResult.([]Evaluation)
	if !ok {
		return state
	}
	state.EvaluatedJobs = append(state.EvaluatedJobs, evaluations...)
	return state
}

// renderResult filters jobs by score and renders the survivors into a page.
// An empty scrape short-circuits to the canned message without touching the
// inference client.
func (w *Workflow) renderResult(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	if len(state.ScrapedJobs) == 0 {
		state.Result = NoJobsMessage
		return state, nil
	}

	selected := w.selectJobs(state)
	if len(selected) == 0 {
		state.Result = NoJobsMessage
		return state, nil
	}

	page, err := w.inference.RenderPage(ctx, selected)
	if err != nil {
		return state, err
	}
	state.Result = page
	return state, nil
}

// selectJobs keeps jobs whose score clears the threshold, preserving the
// refined (experience-sorted) order. Duplicate job ids resolve to the last
// evaluation seen.
func (w *Workflow) selectJobs(state WorkflowState) []display.RankedJob {
	scores := make(map[string]int, len(state.EvaluatedJobs))
	for _, eval := range state.EvaluatedJobs {
		scores[eval.JobID] = eval.Score
	}

	var selected []display.RankedJob
	for _, job := range state.ScrapedJobs {
		score, scored := scores[job.JobID]
		if !scored || score < w.scoreThreshold {
			continue
		}
		selected = append(selected, display.RankedJob{JobRecord: job, Score: score})
	}
	return selected
}

// deliverResult hands the report to the sink. Delivery failure is logged
// but does not fail the run: the result is already durable in the final
// checkpoint.
func (w *Workflow) deliverResult(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	if w.sink == nil {
		return state, nil
	}
	report := &display.Report{Result: state.Result, Jobs: w.selectJobs(state)}
	if err := w.sink.Deliver(ctx, report); err != nil {
		w.logger.Warnw("result delivery failed", "error", err)
	}
	return state, nil
}
