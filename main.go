package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classifieds-scraper/config"
	"classifieds-scraper/models"
	"classifieds-scraper/pipeline"
	"classifieds-scraper/scraper"
	"classifieds-scraper/scraper/otomoto"
	"classifieds-scraper/services"
	"classifieds-scraper/storage"
	"classifieds-scraper/utils"
)

func main() {
	os.Exit(run())
}

// run wires and executes one harvest. Deferred cleanup such as closing the
// browser and stores always runs before the exit code is returned.
func run() int {
	logger := utils.NewLogger()
	cfg := config.Load()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("Invalid LOG_LEVEL %q, staying at info: %v", cfg.LogLevel, err)
	}

	logger.Info("=== Classifieds harvester starting ===")
	logger.Info("Config: pages: %d | workers: %d | fetch: %s | attempts: %d",
		cfg.MaxPages, cfg.MaxConcurrency, cfg.FetchMode, cfg.MaxRetries)

	policies, err := config.LoadColumnPolicies(cfg.ColumnPolicyPath)
	if err != nil {
		logger.Error("Failed to load column policy: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	var base scraper.Fetcher
	switch cfg.FetchMode {
	case "chrome":
		chrome := scraper.NewChromeFetcher(cfg.ChromeBin, cfg.UserAgent, timeout, logger)
		defer chrome.Close()
		base = chrome
	case "http":
		base = scraper.NewHTTPFetcher(timeout, cfg.UserAgent)
	default:
		logger.Error("Unknown FETCH_MODE %q (want http or chrome)", cfg.FetchMode)
		return 1
	}
	fetcher := scraper.NewRetryFetcher(base, cfg.MaxRetries, 2*time.Second, logger)

	var stores []storage.TableStore
	if cfg.SQLitePath != "" {
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to open SQLite: %v", err)
			return 1
		}
		defer sqliteStore.Close()
		stores = append(stores, sqliteStore)
	}
	if cfg.PostgresEnabled {
		pgStore, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return 1
		}
		defer pgStore.Close()
		stores = append(stores, pgStore)
	}

	sel := otomoto.DefaultSelectors()
	p := pipeline.New(
		otomoto.NewLinkCollector(fetcher, sel, cfg.EmptyPageStop, logger),
		otomoto.NewDetailExtractor(fetcher, sel, logger),
		storage.ExtWriter{},
		newProgress(cfg.Progress, logger),
		pipeline.NewLogDiagnostics(logger),
		logger,
		stores...,
	)

	res, err := p.Run(ctx, pipeline.Options{
		URLTemplate: cfg.SearchURLTemplate,
		MaxPages:    cfg.MaxPages,
		Workers:     cfg.MaxConcurrency,
		RawPath:     cfg.RawOutputPath,
		CleanPath:   cfg.CleanOutputPath,
		TableName:   cfg.TableName,
		Policies:    policies,
	})
	if err != nil {
		logger.Error("Harvest failed: %v", err)
		return 1
	}

	if len(res.Raw.Rows) == 0 {
		logger.Warn("No listings were harvested; artifacts contain headers only.")
	}

	report := reportSource(ctx, res.Clean, stores, cfg.TableName, logger)
	insightSvc := services.NewInsightService(logger, services.InsightKeys{
		Price:    sel.PriceKey,
		Location: sel.LocationKey,
		URL:      sel.URLKey,
	})
	insightSvc.Print(insightSvc.Generate(report))

	fmt.Printf("  Done. Raw → %s | Clean → %s\n\n", cfg.RawOutputPath, cfg.CleanOutputPath)
	return 0
}

// reportSource prefers the table as read back from the first store, so the
// report reflects what was persisted.
func reportSource(ctx context.Context, clean *models.Table, stores []storage.TableStore, name string, logger *utils.Logger) *models.Table {
	if len(stores) == 0 {
		return clean
	}
	t, err := stores[0].Load(ctx, name)
	if err != nil {
		logger.Error("Failed to read %s back for insights: %v", name, err)
		return clean
	}
	return t
}

func newProgress(kind string, logger *utils.Logger) pipeline.Progress {
	switch kind {
	case "spinner":
		return utils.NewSpinnerProgress()
	case "none":
		return pipeline.NopProgress{}
	}
	return utils.NewLogProgress(logger, 25)
}
