// Package scrape provides job board sources that normalize heterogeneous
// upstream schemas into a common JobRecord shape.
package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// JobRecord is the normalized job posting shape shared by all sources.
// JobID is the natural key; uniqueness across sources is not guaranteed and
// downstream lookups are last-write-wins on collision.
type JobRecord struct {
	JobID          string `json:"job_id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Salary         string `json:"salary"`
	ExperienceText string `json:"experience"`
	PostDate       string `json:"post_date"`
	Skills         string `json:"skills"`
	URL            string `json:"url"`
	Description    string `json:"description"`
}

// Query is the normalized search request sent to every source
type Query struct {
	Role            string `json:"role"`
	Location        string `json:"location"`
	WorkMode        string `json:"work_mode"` // "Work from office", "Remote", "Hybrid"
	ExperienceYears int    `json:"experience_years"`
}

// Source is one job board. Search fetches up to pageCount pages; a page that
// fails contributes empty results (logged by the source) rather than an error.
// Search only returns an error for non-degradable faults such as context
// cancellation.
type Source interface {
	Search(ctx context.Context, query Query, pageCount int) ([]JobRecord, error)
	Name() string
}

// SearchAll queries every source concurrently and concatenates the results.
// A source that errors contributes nothing; order across sources follows the
// sources slice so repeated runs are deterministic.
func SearchAll(ctx context.Context, sources []Source, query Query, pageCount int, logger *zap.SugaredLogger) []JobRecord {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	results := make([][]JobRecord, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			jobs, err := source.Search(ctx, query, pageCount)
			if err != nil {
				logger.Warnw("job source failed, contributing no results",
					"source", source.Name(), "error", err)
				return
			}
			results[i] = jobs
		}(i, source)
	}
	wg.Wait()

	var all []JobRecord
	for _, jobs := range results {
		all = append(all, jobs...)
	}
	return all
}
