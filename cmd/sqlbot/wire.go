package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/agents"
	"github.com/kochurovskyi/sqlbot/internal/config"
	"github.com/kochurovskyi/sqlbot/internal/llmprovider"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/orchestrator"
	"github.com/kochurovskyi/sqlbot/internal/router"
	"github.com/kochurovskyi/sqlbot/internal/sqldb"
)

// app bundles the fully wired dependency graph, closed by its own Close.
type app struct {
	cfg            config.Config
	db             *sqldb.DB
	store          *memory.Store
	orch           *orchestrator.Orchestrator
	logger         *slog.Logger
	messageTimeout time.Duration
}

func (a *app) Close() {
	a.db.Close()
	a.store.Close()
}

// buildApp loads config, opens the database, resolves the LLM provider,
// constructs the four specialized agents, and assembles the orchestrator.
// It is the single wiring point shared by "serve" and "repl".
func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg := config.Load(cfgPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sqldb.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider, err := llmprovider.Resolve(llmprovider.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolve llm provider: %w", err)
	}
	provider = sqlbot.WithRetry(provider)

	store := memory.New(memory.Config{
		MaxMessagesPerThread:    cfg.Memory.MaxMessagesPerThread,
		MaxConversationTokens:   cfg.Memory.MaxConversationTokens,
		CompressionTriggerRatio: cfg.Memory.CompressionTriggerRatio,
		KeepRecentMessages:      cfg.Memory.KeepRecentMessages,
		MaxQueriesPerThread:     cfg.Memory.MaxQueriesPerThread,
		LockIdleSweepInterval:   time.Duration(cfg.Memory.LockIdleSweepIntervalSec) * time.Second,
	})

	stepLimit := cfg.Agent.StepLimit
	agentSet := map[router.Intent]sqlbot.Agent{
		router.SQLQuery:     agents.NewSQLQueryAgent(provider, db, store, cfg.Table.Name, stepLimit),
		router.CSVExport:    agents.NewCSVExportAgent(provider, store, cfg.Table.Name, cfg.CSV.OutputDir, stepLimit),
		router.SQLRetrieval: agents.NewSQLRetrievalAgent(provider, store, stepLimit),
		router.OffTopic:     agents.NewOffTopicAgent(cfg.Table.Name),
	}

	messageTimeout := time.Duration(cfg.Agent.MessageTimeoutSec) * time.Second
	orch := orchestrator.New(store, agentSet, messageTimeout, logger)

	return &app{cfg: cfg, db: db, store: store, orch: orch, logger: logger, messageTimeout: messageTimeout}, nil
}
