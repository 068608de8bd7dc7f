// Command belex runs the BELEX legal search web service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/kueblaw/belex/internal/api/belex"
	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/config"
	"github.com/kueblaw/belex/internal/filestore"
	"github.com/kueblaw/belex/internal/search"
	"github.com/kueblaw/belex/internal/server"
	"github.com/kueblaw/belex/internal/storage"
	"github.com/kueblaw/belex/internal/storage/sqlite"
	"github.com/kueblaw/belex/internal/telemetry"
	"github.com/kueblaw/belex/internal/webapi"
)

func main() {
	// Local development convenience; the file is gitignored.
	_ = godotenv.Load()

	configPath := flag.String("config", "secrets.yaml", "path to the secrets file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Deferred cleanup (query log, tracer) lives in run so it survives the
	// exit below.
	if err := run(*configPath, logger); err != nil {
		logger.Error("belex failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Refuse to start without the required secrets.
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdown, err := telemetry.InitTracer(cfg.Gemini.ProjectID, logger)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer shutdown(context.Background())

	client := gemini.NewClient(cfg.Gemini.APIKey)

	lawClient := belex.NewClient(belex.WithBaseURL(cfg.Belex.BaseURL))
	resolver := search.NewLawResolver(lawClient, cfg.LawCacheTTL(), logger)

	systemPrompt := cfg.Gemini.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = search.DefaultSystemPrompt
	}
	engine := search.NewEngine(client, cfg.Gemini.FilestoreID, cfg.Gemini.Model, systemPrompt, resolver, logger)

	files := filestore.NewService(client, cfg.Gemini.FilestoreID, logger)

	var store storage.QueryStore = storage.NopStore{}
	if cfg.Storage.Path != "" {
		s, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open query log: %w", err)
		}
		defer s.Close()
		store = s
	}

	srv := server.New(cfg.Server.Port, logger)
	webapi.NewHandler(engine, files, lawClient, store, logger).Register(srv.Router)

	return srv.Start()
}
