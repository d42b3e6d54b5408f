package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rechte-gewalt/chronik-crawler/internal/config"
	"github.com/rechte-gewalt/chronik-crawler/internal/fetcher"
	"github.com/rechte-gewalt/chronik-crawler/internal/logging"
	"github.com/rechte-gewalt/chronik-crawler/internal/metrics"
	"github.com/rechte-gewalt/chronik-crawler/internal/store"
	"github.com/rechte-gewalt/chronik-crawler/internal/walker"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs one full crawl of the chronicle",
		Long: `Fetches the geolocation feed, loads the filter vocabularies from the
listing page, then walks every listing page sequentially until pagination
is exhausted. The run stops on the first fatal error; re-running resumes
safely because all writes are idempotent upserts.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()

	db, err := store.New(ctx, cfg.DB.DSN, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.Init(ctx); err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		metrics.Init()
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	f := fetcher.New(fetcher.Config{
		UserAgent:      cfg.HTTP.UserAgent,
		Timeout:        cfg.Timeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffInitial: cfg.BackoffInitial(),
		BackoffMax:     cfg.BackoffMax(),
	}, logger)

	driver := walker.NewDriver(cfg.Chronicle.BaseURL, cfg.Chronicle.GeoFeedURL, f, db, logger)

	logger.Info("starting crawl", zap.String("base_url", cfg.Chronicle.BaseURL))
	if err := driver.Run(ctx); err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	logger.Info("crawl finished")
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}
