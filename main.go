package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
	_ "github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource/mssql"
	_ "github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource/postgres"
	_ "github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource/sqlite"
	"github.com/datasus-ai/txt2sql-engine/pkg/config"
	"github.com/datasus-ai/txt2sql-engine/pkg/database"
	"github.com/datasus-ai/txt2sql-engine/pkg/handlers"
	"github.com/datasus-ai/txt2sql-engine/pkg/llm"
	"github.com/datasus-ai/txt2sql-engine/pkg/logging"
	enginemcp "github.com/datasus-ai/txt2sql-engine/pkg/mcp"
	"github.com/datasus-ai/txt2sql-engine/pkg/mcp/tools"
	"github.com/datasus-ai/txt2sql-engine/pkg/middleware"
	"github.com/datasus-ai/txt2sql-engine/pkg/pipeline"
	"github.com/datasus-ai/txt2sql-engine/pkg/schema"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// The demo SQLite database bootstraps itself from the bundled
	// migrations; other dialects are expected to exist already.
	if cfg.Database.Type == "sqlite" {
		db, err := database.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			logger.Fatal("Failed to open sqlite database", zap.Error(err))
		}
		if err := database.RunMigrations(db, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		_ = db.Close()
	}

	ctx := context.Background()

	ds, err := datasource.Open(ctx, cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to open datasource",
			zap.String("type", cfg.Database.Type),
			zap.Error(err))
	}
	defer func() { _ = ds.Close() }()

	llmClient, err := llm.NewFromConfig(&llm.Config{
		Provider: cfg.LLM.Provider,
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	logger.Info("LLM client ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", llmClient.GetModel()),
		zap.String("endpoint", llmClient.GetEndpoint()))

	agent := llm.NewQueryAgent(llmClient)
	schemaService := schema.NewService(ds, cfg.Schema.Table, logger)
	pipe := pipeline.New(agent, schemaService, ds, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(pipe, schemaService, logger).RegisterRoutes(mux)

	mcpServer := enginemcp.NewServer("txt2sql-engine", cfg.Version, logger)
	deps := &tools.Deps{Service: pipe, Schema: schemaService, Logger: logger}
	tools.RegisterQueryTools(mcpServer.MCP(), deps)
	tools.RegisterSchemaTool(mcpServer.MCP(), deps)
	tools.RegisterStatsTool(mcpServer.MCP(), deps)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	mux.Handle("/mcp", mcpServer.NewStreamableHTTPServer())

	handler := middleware.CORS()(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting txt2sql-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
