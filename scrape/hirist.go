package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
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

const hiristUserAgent = "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Mobile Safari/537.36"

const (
	hiristAnywhereInIndia = 88
	hiristRemote          = 132
	hiristPageSize        = 20
	// Hirist filters on an experience band rather than a single value.
	hiristExperienceSpread = 2
)

// hiristLocations maps human location names to Hirist's numeric location ids.
var hiristLocations = map[string]int{
	"Metros":             87,
	"Anywhere in India":  88,
	"Overseas":           89,
	"International":      89,
	"Ahmedabad":          53,
	"Amritsar":           45,
	"Andhra Pradesh":     34,
	"Aurangabad":         79,
	"Bangalore":          3,
	"Bhubaneshwar":       65,
	"Bihar":              19,
	"Chandigarh":         14,
	"Chennai":            6,
	"Chhattisgarh":       64,
	"Cochin":             70,
	"Kochi":              70,
	"Coimbatore":         84,
	"Cuttack":            86,
	"Dehradun":           58,
	"Delhi":              36,
	"Delhi NCR":          1,
	"Faridabad":          40,
	"Gandhinagar":        55,
	"Ghaziabad":          41,
	"Goa":                13,
	"Greater Noida":      39,
	"Gujarat":            8,
	"Guntur":             77,
	"Gurgaon":            37,
	"Gurugram":           37,
	"Guwahati":           12,
	"Haridwar":           57,
	"Haryana":            16,
	"Hosur":              71,
	"Hubli":              72,
	"Hyderabad":          4,
	"Jaipur":             11,
	"Jalandhar":          46,
	"Jammu":              43,
	"Jammu & Kashmir":    42,
	"Jamshedpur":         63,
	"Jharkhand":          20,
	"Jodhpur":            52,
	"Karnataka":          31,
	"Kerala":             17,
	"Kolkata":            5,
	"Lucknow":            60,
	"Ludhiana":           48,
	"Madurai":            83,
	"Maharashtra":        9,
	"MP":                 10,
	"Mumbai":             2,
	"Mysore":             73,
	"Nagpur":             66,
	"Nasik":              67,
	"Navi Mumbai":        68,
	"Noida":              38,
	"Odisha":             18,
	"Panipat":            50,
	"Patiala":            47,
	"Patna":              61,
	"Pondicherry":        85,
	"Pune":               7,
	"Punjab":             15,
	"Raipur":             74,
	"Rajasthan":          33,
	"Rajkot":             80,
	"Ranchi":             62,
	"Sonipat":            49,
	"Srinagar":           44,
	"Surat":              54,
	"Tamil Nadu":         32,
	"Telangana":          35,
	"Thane":              69,
	"Trivandrum":         75,
	"Thiruvananthapuram": 75,
	"Udaipur":            51,
	"UP":                 21,
	"Uttarakhand":        59,
	"Vadodara":           56,
	"Baroda":             56,
	"Varanasi":           81,
	"Banaras":            81,
	"Vijayawada":         76,
	"Vishakhapatnam":     78,
	"Vizag":              78,
	"Warangal":           82,
	"Abu Dhabi":          100,
	"Afghanistan":        109,
	"Africa":             26,
	"Bahrain":            90,
	"Bangladesh":         107,
	"Bhutan":             105,
	"China":              108,
	"Dhaka":              106,
	"Doha":               98,
	"Dubai":              91,
	"Egypt":              113,
	"Ethiopia":           112,
	"EU":                 28,
	"Hong Kong":          30,
	"Indonesia":          103,
	"Kabul":              92,
	"Kenya":              114,
	"Kuwait":             93,
	"London":             95,
	"Malaysia":           27,
	"Middle East":        25,
	"Muscat":             97,
	"Nairobi":            115,
	"Nepal":              104,
	"Nigeria":            94,
	"Oman":               96,
	"Pakistan":           110,
	"Philippines":        120,
	"Qatar":              99,
	"Riyadh":             102,
	"Saudi Arabia":       101,
	"Singapore":          24,
	"South Africa":       117,
	"Sri Lanka":          111,
	"Tanzania":           116,
	"UK":                 23,
	"US":                 22,
	"Zambia":             119,
	"Zimbabwe":           118,
	"Others":             100000,
	"Mizoram":            122,
	"Assam":              123,
	"Manipur":            124,
	"Meghalaya":          125,
	"Tripura":            126,
	"Arunachal Pradesh":  127,
	"Nagaland":           128,
	"West Bengal":        129,
	"Indore":             130,
	"Bhopal":             121,
	"Mohali":             131,
	"Remote":             132,
}

// HiristConfig carries everything a HiristSource needs. SessionCookie is the
// PHPSESSID cookie Hirist requires on its search endpoint.
type HiristConfig struct {
	BaseURL           string
	SessionCookie     string
	RequestsPerSecond float64
	Logger            *zap.SugaredLogger
}

// HiristSource searches the Hirist gladiator job API.
type HiristSource struct {
	baseURL string
	cookie  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

func NewHiristSource(cfg HiristConfig) *HiristSource {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &HiristSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cookie:  cfg.SessionCookie,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.Named("hirist"),
	}
}

func (s *HiristSource) Name() string { return "hirist" }

// locationID resolves a location name to Hirist's numeric id. Resolution
// tries an exact match, then a case-insensitive match, then a substring
// match in either direction, falling back to the Remote id.
func locationID(name string) int {
	if name == "" {
		return hiristAnywhereInIndia
	}
	if id, ok := hiristLocations[name]; ok {
		return id
	}

	lower := strings.ToLower(name)
	keys := make([]string, 0, len(hiristLocations))
	for k := range hiristLocations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.ToLower(k) == lower {
			return hiristLocations[k]
		}
	}
	for _, k := range keys {
		kl := strings.ToLower(k)
		if strings.Contains(kl, lower) || strings.Contains(lower, kl) {
			return hiristLocations[k]
		}
	}
	return hiristRemote
}

// locationParam resolves a comma-separated location list to a deduplicated,
// sorted id list for the loc query parameter.
func locationParam(location string) string {
	var names []string
	for _, part := range strings.Split(location, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		names = []string{""}
	}

	seen := make(map[int]bool)
	var ids []int
	for _, name := range names {
		id := locationID(name)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Search fetches up to pageCount pages. Pages are zero-indexed upstream.
// A page that fails is logged and skipped.
func (s *HiristSource) Search(ctx context.Context, query Query, pageCount int) ([]JobRecord, error) {
	loc := locationParam(query.Location)

	var jobs []JobRecord
	for page := 0; page < pageCount; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return jobs, errors.Wrap(err, "rate limiter interrupted")
		}
		pageJobs, err := s.fetchPage(ctx, query, loc, page)
		if err != nil {
			s.logger.Warnw("page fetch failed, skipping", "page", page, "error", err)
			continue
		}
		jobs = append(jobs, pageJobs...)
	}
	return jobs, nil
}

func (s *HiristSource) fetchPage(ctx context.Context, query Query, loc string, page int) ([]JobRecord, error) {
	params := url.Values{
		"minexp":  {strconv.Itoa(query.ExperienceYears)},
		"maxexp":  {strconv.Itoa(query.ExperienceYears + hiristExperienceSpread)},
		"query":   {query.Role},
		"page":    {strconv.Itoa(page)},
		"loc":     {loc},
		"posting": {"0"},
		"size":    {strconv.Itoa(hiristPageSize)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search request")
	}
	req.Header.Set("User-Agent", hiristUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if s.cookie != "" {
		req.Header.Set("Cookie", "PHPSESSID="+s.cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WithMessage(errors.Wrap(errors.ErrSourceUnavailable, err.Error()), "hirist request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "hirist returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload hiristResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode hirist response")
	}
	return parseHiristJobs(payload), nil
}

type hiristResponse struct {
	Data []hiristJob `json:"data"`
}

type hiristJob struct {
	ID            json.Number   `json:"id"`
	Title         string        `json:"title"`
	CompanyData   hiristCompany `json:"companyData"`
	Locations     []hiristName  `json:"locations"`
	Tags          []hiristName  `json:"tags"`
	MinSal        *int          `json:"minSal"`
	MaxSal        *int          `json:"maxSal"`
	MinExp        *int          `json:"min"`
	MaxExp        *int          `json:"max"`
	CreatedTimeMs int64         `json:"createdTimeMs"`
	JobDetailURL  string        `json:"jobDetailUrl"`
}

type hiristCompany struct {
	CompanyName string `json:"companyName"`
}

type hiristName struct {
	Name string `json:"name"`
}

func parseHiristJobs(payload hiristResponse) []JobRecord {
	jobs := make([]JobRecord, 0, len(payload.Data))
	for _, job := range payload.Data {
		location := "Not specified"
		if names := joinNames(job.Locations); names != "" {
			location = names
		}

		salary := "Not disclosed"
		if job.MinSal != nil && job.MaxSal != nil {
			salary = fmt.Sprintf("%d-%d LPA", *job.MinSal, *job.MaxSal)
		}

		experience := "Not specified"
		if job.MinExp != nil && job.MaxExp != nil {
			experience = fmt.Sprintf("%d-%d Yrs", *job.MinExp, *job.MaxExp)
		}

		skills := "Not specified"
		if names := joinNames(job.Tags); names != "" {
			skills = names
		}

		postDate := ""
		if job.CreatedTimeMs > 0 {
			postDate = time.UnixMilli(job.CreatedTimeMs).UTC().Format("2006-01-02")
		}

		// Hirist has no free-text description; synthesize one from the
		// structured fields so downstream scoring sees comparable input.
		description := fmt.Sprintf(
			"%s is actively seeking a qualified %s to join our growing team. "+
				"The ideal candidate requires %s of relevant industry experience. "+
				"We are offering a competitive compensation package of %s. "+
				"The primary technical requirements for this role include: %s.",
			job.CompanyData.CompanyName, job.Title, experience, salary, skills)

		jobs = append(jobs, JobRecord{
			JobID:          job.ID.String(),
			Title:          job.Title,
			Company:        job.CompanyData.CompanyName,
			Location:       location,
			Salary:         salary,
			ExperienceText: experience,
			PostDate:       postDate,
			Skills:         skills,
			URL:            job.JobDetailURL,
			Description:    description,
		})
	}
	return jobs
}

func joinNames(items []hiristName) string {
	var names []string
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	return strings.Join(names, ", ")
}
