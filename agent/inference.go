package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/seekwell/seekwell/ai"
	"github.com/seekwell/seekwell/ai/openrouter"
	"github.com/seekwell/seekwell/display"
	"github.com/seekwell/seekwell/errors"
	"github.com/seekwell/seekwell/scrape"
)

const parsePreferencePrompt = `Convert the following natural language into a valid, well-structured JSON object.
Rules:
- Output ONLY JSON (no text, no markdown)
- Use clear, semantic keys
- Preserve all information from the input
- Use arrays for lists and nested objects where appropriate
- Use null for missing or unknown values

Input:
%s`

const buildQueryPrompt = `Based on the user requirements, create a simple and effective job search query.

User requirements: %s

IMPORTANT INSTRUCTIONS:
- The 'query' field should be SIMPLE - use only the job designation/title (e.g., "Software Engineer", "Python Developer")
- DO NOT include all skills in the query - job search APIs work better with simple queries
- The skills will be used for filtering results later, not for the initial search
- Keep the query concise and focused on the job role

In the response i need these fields only:
- query (simple job title/designation only, e.g., "Software Engineer" or "Python Developer")
- location (location of the job)
- job_type (string value like "Work from office","Remote","Hybrid")
- experience (must be an Integer str value)

Response format must be JSON.
{
    "query": "",
    "location": "",
    "job_type": "",
    "experience": ""
}`

const scoreBatchPrompt = `Evaluate the following jobs based on the user's preferences.
User preferences:
%s
Jobs:
%s
Response format must be JSON.
{
    "jobs": [
        {
            "job_id": "",
            "score": 0 (score must be 0-10 scale)
        }
    ]
}`

const renderPrompt = `You are a frontend UI engineer.
Convert the given JSON array of job listings (same fields in each item) into ONE self-contained HTML file (HTML + CSS + JS in a single file) with CTA buttons.
Input data:
%s`

// Inference wraps the chat client with the workflow's typed operations.
// Every method validates the model output and returns ErrInferenceMalformed
// (or ErrValidation) rather than letting bad JSON leak downstream.
type Inference struct {
	client ai.Client
	logger *zap.SugaredLogger
}

func NewInference(client ai.Client, logger *zap.SugaredLogger) *Inference {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Inference{client: client, logger: logger.Named("inference")}
}

// ParsePreference converts free-text seeker input into a structured
// preference object.
func (inf *Inference) ParsePreference(ctx context.Context, text string) (map[string]any, error) {
	resp, err := inf.client.Chat(ctx, openrouter.ChatRequest{
		UserPrompt: fmt.Sprintf(parsePreferencePrompt, text),
		JSONMode:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "preference parsing failed")
	}

	var preference map[string]any
	if err := ai.UnmarshalObject(resp.Content, &preference); err != nil {
		return nil, errors.WithMessage(err, "preference response")
	}
	return preference, nil
}

type searchQueryResponse struct {
	Query      string `json:"query"`
	Location   string `json:"location"`
	JobType    string `json:"job_type"`
	Experience string `json:"experience"`
}

// BuildSearchQuery derives a normalized search query from the seeker's
// preferences. All four fields must come back non-empty and experience must
// parse as an integer; anything else is ErrValidation.
func (inf *Inference) BuildSearchQuery(ctx context.Context, preference map[string]any) (*scrape.Query, error) {
	prefJSON, err := json.Marshal(preference)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode preference")
	}

	resp, err := inf.client.Chat(ctx, openrouter.ChatRequest{
		UserPrompt: fmt.Sprintf(buildQueryPrompt, string(prefJSON)),
		JSONMode:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "search query generation failed")
	}

	var raw searchQueryResponse
	if err := ai.UnmarshalObject(resp.Content, &raw); err != nil {
		return nil, errors.WithMessage(err, "search query response")
	}

	if raw.Query == "" || raw.Location == "" || raw.JobType == "" || raw.Experience == "" {
		return nil, errors.Wrapf(errors.ErrValidation,
			"search query is missing fields: query=%q location=%q job_type=%q experience=%q",
			raw.Query, raw.Location, raw.JobType, raw.Experience)
	}
	years, err := strconv.Atoi(strings.TrimSpace(raw.Experience))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrValidation, "experience %q is not an integer", raw.Experience)
	}

	return &scrape.Query{
		Role:            raw.Query,
		Location:        raw.Location,
		WorkMode:        raw.JobType,
		ExperienceYears: years,
	}, nil
}

type scoredJobsResponse struct {
	Jobs []struct {
		JobID any      `json:"job_id"`
		Score *float64 `json:"score"`
	} `json:"jobs"`
}

// ScoreBatch scores one chunk of jobs against the seeker's preferences.
// Entries with a missing id or a score outside 0-10 are dropped, not
// failed: one bad row should not discard a whole batch.
func (inf *Inference) ScoreBatch(ctx context.Context, task BatchTask) ([]Evaluation, error) {
	prefJSON, err := json.Marshal(task.Preference)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode preference")
	}
	jobsJSON, err := json.Marshal(task.Jobs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode jobs")
	}

	resp, err := inf.client.Chat(ctx, openrouter.ChatRequest{
		UserPrompt: fmt.Sprintf(scoreBatchPrompt, string(prefJSON), string(jobsJSON)),
		JSONMode:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "job scoring failed")
	}

	var raw scoredJobsResponse
	if err := ai.UnmarshalObject(resp.Content, &raw); err != nil {
		return nil, errors.WithMessage(err, "scoring response")
	}

	evaluations := make([]Evaluation, 0, len(raw.Jobs))
	for _, row := range raw.Jobs {
		id := normalizeJobID(row.JobID)
		if id == "" || row.Score == nil || *row.Score < 0 || *row.Score > 10 {
			inf.logger.Warnw("dropping malformed score entry", "job_id", row.JobID, "score", row.Score)
			continue
		}
		evaluations = append(evaluations, Evaluation{JobID: id, Score: int(*row.Score)})
	}
	return evaluations, nil
}

// normalizeJobID accepts both string and numeric ids, matching how models
// echo ids back.
func normalizeJobID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// RenderPage renders the selected jobs into one self-contained HTML page.
// The model is expected to answer with a fenced html block.
func (inf *Inference) RenderPage(ctx context.Context, jobs []display.RankedJob) (string, error) {
	jobsJSON, err := json.Marshal(jobs)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode jobs")
	}

	resp, err := inf.client.Chat(ctx, openrouter.ChatRequest{
		UserPrompt: fmt.Sprintf(renderPrompt, string(jobsJSON)),
	})
	if err != nil {
		return "", errors.Wrap(err, "page rendering failed")
	}

	page := ai.ExtractFencedBlock(resp.Content, "html")
	if page == "" {
		// Some models answer with bare HTML and no fence
		trimmed := strings.TrimSpace(resp.Content)
		if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
			return trimmed, nil
		}
		return "", errors.Wrap(errors.ErrInferenceMalformed, "render response contains no html block")
	}
	return page, nil
}
