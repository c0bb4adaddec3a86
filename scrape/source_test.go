package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seekwell/seekwell/errors"
)

type stubSource struct {
	name string
	jobs []JobRecord
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(ctx context.Context, query Query, pageCount int) ([]JobRecord, error) {
	return s.jobs, s.err
}

func TestSearchAllConcatenatesInSourceOrder(t *testing.T) {
	sources := []Source{
		&stubSource{name: "a", jobs: []JobRecord{{JobID: "1"}, {JobID: "2"}}},
		&stubSource{name: "b", jobs: []JobRecord{{JobID: "3"}}},
	}

	jobs := SearchAll(context.Background(), sources, Query{}, 1, nil)
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.JobID
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestSearchAllDegradesOnSourceFailure(t *testing.T) {
	sources := []Source{
		&stubSource{name: "down", err: errors.Wrap(errors.ErrSourceUnavailable, "boom")},
		&stubSource{name: "up", jobs: []JobRecord{{JobID: "7"}}},
	}

	jobs := SearchAll(context.Background(), sources, Query{}, 1, nil)
	assert.Len(t, jobs, 1)
	assert.Equal(t, "7", jobs[0].JobID)
}

func TestSearchAllNoSources(t *testing.T) {
	assert.Empty(t, SearchAll(context.Background(), nil, Query{}, 1, nil))
}
