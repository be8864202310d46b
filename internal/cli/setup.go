package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/emberworks/rekindle/internal/config"
	"github.com/emberworks/rekindle/internal/identity"
	"github.com/emberworks/rekindle/internal/llm"
	"github.com/emberworks/rekindle/internal/pipeline"
	"github.com/emberworks/rekindle/internal/source"
	"github.com/emberworks/rekindle/internal/store"
)

// loadConfig resolves the config file path and loads it over defaults.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openStore opens the database at the configured (or default) path.
func openStore(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// buildRunners constructs one pipeline runner per registered transport.
// A missing LLM disables summarization but not ingestion.
func buildRunners(cfg config.Config, db *store.DB) ([]*pipeline.Runner, error) {
	names := source.Registered()
	if len(names) == 0 {
		return nil, fmt.Errorf("no transports registered (rekindle core ships collaborator interfaces only)")
	}

	var llmClient llm.Client
	if c, err := llm.NewClient(cfg.LLM); err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM not configured (%v), summaries degrade to clipped bodies\n", err)
	} else {
		llmClient = c
	}

	runners := make([]*pipeline.Runner, 0, len(names))
	for _, name := range names {
		src, err := source.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open transport %s: %w", name, err)
		}
		runners = append(runners, &pipeline.Runner{
			DB:             db,
			Source:         src,
			Resolver:       identity.NoopResolver{},
			LLM:            llmClient,
			LookbackMonths: cfg.Pipeline.LookbackMonths,
			WindowDelay:    time.Duration(cfg.Pipeline.WindowDelayMS) * time.Millisecond,
		})
	}
	return runners, nil
}
