package scrape

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seekwell/seekwell/errors"
)

const naukriUserAgent = "Mozilla/5.0 (iPad; CPU OS 18_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.5 Mobile/15E148 Safari/604.1"

// workModeParam maps the normalized work mode to Naukri's wfhType codes.
var workModeParam = map[string]string{
	"Work from office": "0",
	"Remote":           "2",
	"Hybrid":           "3",
}

// NaukriConfig carries everything a NaukriSource needs. NKParam is the
// per-account search token Naukri requires on its JSON API.
type NaukriConfig struct {
	BaseURL           string
	NKParam           string
	RequestsPerSecond float64
	Logger            *zap.SugaredLogger
}

// NaukriSource searches the Naukri v3 job API. Session identifiers are
// randomized once per source instance, matching what the mobile web client
// sends.
type NaukriSource struct {
	baseURL  string
	nkparam  string
	appID    string
	systemID string
	clientID string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger
}

func NewNaukriSource(cfg NaukriConfig) *NaukriSource {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &NaukriSource{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		nkparam:  cfg.NKParam,
		appID:    strconv.Itoa(100 + rand.Intn(900)),
		systemID: strconv.Itoa(100 + rand.Intn(900)),
		clientID: randomClientID(4),
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logger.Named("naukri"),
	}
}

func (s *NaukriSource) Name() string { return "naukri" }

func randomClientID(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Search fetches up to pageCount pages. A page that fails is logged and
// skipped so one bad response never discards the pages that worked.
func (s *NaukriSource) Search(ctx context.Context, query Query, pageCount int) ([]JobRecord, error) {
	var jobs []JobRecord
	for page := 1; page <= pageCount; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return jobs, errors.Wrap(err, "rate limiter interrupted")
		}
		pageJobs, err := s.fetchPage(ctx, query, page)
		if err != nil {
			s.logger.Warnw("page fetch failed, skipping", "page", page, "error", err)
			continue
		}
		jobs = append(jobs, pageJobs...)
	}
	return jobs, nil
}

func (s *NaukriSource) fetchPage(ctx context.Context, query Query, page int) ([]JobRecord, error) {
	params := url.Values{
		"location":    {query.Location},
		"keyword":     {query.Role},
		"k":           {query.Role},
		"searchType":  {"adv_1"},
		"urlType":     {"search_by_key_loc"},
		"experience":  {strconv.Itoa(query.ExperienceYears)},
		"pageNo":      {strconv.Itoa(page)},
		"src":         {"pagination-searchFormUsage"},
		"jobAge":      {"1"},
		"sort":        {"f"},
		"noOfResults": {"20"},
	}
	if code, ok := workModeParam[query.WorkMode]; ok {
		params.Set("wfhType", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("appid", s.appID)
	req.Header.Set("clientid", s.clientID)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("expires", "0")
	req.Header.Set("nkparam", s.nkparam)
	req.Header.Set("priority", "u=1, i")
	req.Header.Set("systemid", s.systemID)
	req.Header.Set("user-agent", naukriUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WithMessage(errors.Wrap(errors.ErrSourceUnavailable, err.Error()), "naukri request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "naukri returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload naukriResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode naukri response")
	}
	return parseNaukriJobs(payload), nil
}

type naukriResponse struct {
	JobDetails []naukriJob `json:"jobDetails"`
}

type naukriJob struct {
	JobID          json.Number         `json:"jobId"`
	Title          string              `json:"title"`
	CompanyName    string              `json:"companyName"`
	ExperienceText string              `json:"experienceText"`
	CreatedDate    string              `json:"createdDate"`
	JDURL          string              `json:"jdURL"`
	JobDescription string              `json:"jobDescription"`
	Placeholders   []naukriPlaceholder `json:"placeholders"`
	KeySkills      map[string][]string `json:"keySkills"`
}

type naukriPlaceholder struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

func parseNaukriJobs(payload naukriResponse) []JobRecord {
	jobs := make([]JobRecord, 0, len(payload.JobDetails))
	for _, job := range payload.JobDetails {
		record := JobRecord{
			JobID:          job.JobID.String(),
			Title:          job.Title,
			Company:        job.CompanyName,
			Location:       "Not specified",
			Salary:         "Not disclosed",
			ExperienceText: job.ExperienceText,
			PostDate:       job.CreatedDate,
			Skills:         joinSkills(job.KeySkills),
			URL:            absoluteNaukriURL(job.JDURL),
			Description:    job.JobDescription,
		}
		if record.ExperienceText == "" {
			record.ExperienceText = "Not specified"
		}
		for _, p := range job.Placeholders {
			switch p.Type {
			case "location":
				record.Location = p.Label
			case "salary":
				record.Salary = p.Label
			case "experience":
				if record.ExperienceText == "Not specified" {
					record.ExperienceText = p.Label
				}
			}
		}
		jobs = append(jobs, record)
	}
	return jobs
}

// joinSkills flattens every skill bucket except tagsOrder, deduplicating
// while preserving first-seen order.
func joinSkills(keySkills map[string][]string) string {
	var ordered []string
	seen := make(map[string]bool)
	for _, bucket := range []string{"preferredSkills", "mandatorySkills", "otherSkills", "nerSkills"} {
		for _, skill := range keySkills[bucket] {
			if !seen[skill] {
				seen[skill] = true
				ordered = append(ordered, skill)
			}
		}
	}
	var rest []string
	for bucket := range keySkills {
		switch bucket {
		case "tagsOrder", "preferredSkills", "mandatorySkills", "otherSkills", "nerSkills":
			continue
		}
		rest = append(rest, bucket)
	}
	sort.Strings(rest)
	for _, bucket := range rest {
		for _, skill := range keySkills[bucket] {
			if !seen[skill] {
				seen[skill] = true
				ordered = append(ordered, skill)
			}
		}
	}
	return strings.Join(ordered, ", ")
}

func absoluteNaukriURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return "https://www.naukri.com" + path
}
