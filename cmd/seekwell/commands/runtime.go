// Package commands implements the seekwell CLI commands.
package commands

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/seekwell/seekwell/agent"
	"github.com/seekwell/seekwell/ai"
	"github.com/seekwell/seekwell/config"
	"github.com/seekwell/seekwell/display"
	"github.com/seekwell/seekwell/errors"
	"github.com/seekwell/seekwell/flow"
	"github.com/seekwell/seekwell/logger"
	"github.com/seekwell/seekwell/scrape"
)

// ConfigPath is set by the root --config flag; empty means defaults plus
// environment plus an optional seekwell.toml in the working directory.
var ConfigPath string

func loadConfig() (*config.Config, error) {
	if ConfigPath != "" {
		return config.LoadFromFile(ConfigPath)
	}
	return config.Load()
}

// runtime bundles everything a command needs to drive the workflow
type runtime struct {
	cfg    *config.Config
	engine *flow.Engine[agent.WorkflowState]
	db     *sql.DB
	saver  *flow.SQLiteSaver
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// newRuntime wires config, checkpoint store, inference, sources, and sink
// into an engine over the job-search graph.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", cfg.Database.Path)
	}
	saver := flow.NewSQLiteSaver(db)
	if err := saver.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ensure checkpoint schema")
	}

	log := logger.Logger
	inference := agent.NewInference(ai.NewClient(cfg, log.Named("ai")), log)

	sources := []scrape.Source{
		scrape.NewNaukriSource(scrape.NaukriConfig{
			BaseURL:           cfg.Scrape.Naukri.BaseURL,
			NKParam:           cfg.Scrape.Naukri.NKParam,
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
			Logger:            log,
		}),
		scrape.NewHiristSource(scrape.HiristConfig{
			BaseURL:           cfg.Scrape.Hirist.BaseURL,
			SessionCookie:     cfg.Scrape.Hirist.SessionCookie,
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
			Logger:            log,
		}),
	}

	workflow, err := agent.NewWorkflow(agent.Options{
		Inference:      inference,
		Sources:        sources,
		Sink:           buildSink(cfg),
		PageCount:      cfg.Scrape.PageCount,
		ChunkSize:      cfg.Flow.ChunkSize,
		ScoreThreshold: cfg.Flow.ScoreThreshold,
		Logger:         log,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	graph, err := workflow.BuildGraph()
	if err != nil {
		db.Close()
		return nil, err
	}
	engine, err := flow.NewEngine(graph, saver, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, engine: engine, db: db, saver: saver}, nil
}

func buildSink(cfg *config.Config) display.Sink {
	if cfg.Output.Format == "text" {
		return display.NewTerminalReport()
	}
	return display.NewFileSink(cfg.Output.Path)
}
