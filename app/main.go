package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-comb/app/analyzer"
	"github.com/lysyi3m/news-comb/app/api"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/ingest"
	"github.com/lysyi3m/news-comb/app/news"
	"github.com/lysyi3m/news-comb/app/processor"
	"github.com/lysyi3m/news-comb/app/profile"
	"github.com/lysyi3m/news-comb/app/quality"
	"github.com/lysyi3m/news-comb/app/tasks"
	"github.com/lysyi3m/news-comb/app/trends"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if config == nil {
		// Help was shown
		return
	}

	setupLogging(config.Debug)

	slog.Info("Starting News Comb", "version", config.Version, "once", config.Once, "realtime", config.Realtime)

	if config.APIKey == "" {
		slog.Warn("News API key not set, upstream requests will be rejected")
	}

	profiles := profile.NewCache(config.ProfilePath)
	if err := profiles.Run(); err != nil {
		slog.Error("Failed to load profile", "path", config.ProfilePath, "error", err)
		os.Exit(1)
	}

	validator := quality.NewValidator(quality.Rules{
		RequiredFields:       profiles.Get().RequiredFields,
		MinTitleLength:       config.MinTitleLength,
		MaxTitleLength:       config.MaxTitleLength,
		MinDescriptionLength: config.MinDescriptionLength,
		MaxDescriptionLength: config.MaxDescriptionLength,
		DuplicateThreshold:   config.DuplicateThreshold,
	})
	validator.UseFieldSource(profiles)

	store, err := database.Open(config.DBPath, validator)
	if err != nil {
		slog.Error("Failed to open database", "path", config.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := ingest.NewClient(ingest.ClientOptions{
		BaseURL:       config.APIBaseURL,
		APIKey:        config.APIKey,
		UserAgent:     config.UserAgent,
		Timeout:       config.RequestTimeout,
		RateLimit:     config.RateLimit,
		MaxRetries:    config.MaxRetries,
		RetryDelay:    config.RetryDelay,
		MaxConcurrent: config.MaxConcurrentRequests,
	})

	limits := ingest.DefaultLimits()
	limits.MaxArticlesPerRun = config.MaxArticlesPerRun
	limits.MaxArticlesPerCategory = config.MaxArticlesPerCategory
	limits.MaxArticlesPerTopic = config.MaxArticlesPerTopic
	limits.MinTitleLength = config.MinTitleLength
	limits.MaxTitleLength = config.MaxTitleLength
	limits.MaxDescriptionLength = config.MaxDescriptionLength
	limits.Workers = config.MaxWorkers

	fetcher := ingest.NewFetcher(client, profiles, limits)

	textAnalyzer := analyzer.NewAnalyzer(analyzer.Options{
		PositiveThreshold:   config.PositiveThreshold,
		NegativeThreshold:   config.NegativeThreshold,
		ConfidenceThreshold: config.ConfidenceThreshold,
		MaxKeywords:         config.MaxKeywords,
		DetectLanguage:      config.DetectLanguage,
	})

	articleProcessor := processor.NewProcessor(validator, textAnalyzer, trends.NewDetector(trends.DefaultLimit), config.MaxWorkers)

	pipeline := &tasks.Pipeline{
		Fetcher:          fetcher,
		Processor:        articleProcessor,
		Store:            store,
		BatchSize:        config.BatchSize,
		TrendWindowHours: config.TrendWindowHours,
		RetentionDays:    config.RetentionDays,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Once {
		code := runOnce(ctx, pipeline, articleProcessor)
		stop()
		_ = store.Close()
		os.Exit(code)
	}

	scheduler := tasks.NewScheduler(pipeline, profiles, config.MaxWorkers, config.CleanupInterval)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "workers", config.MaxWorkers, "cleanup_interval", config.CleanupInterval.String())

	if config.Realtime {
		checkCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
		if err := fetcher.TestConnection(checkCtx); err != nil {
			slog.Warn("News API connection test failed", "error", err)
		}
		cancel()

		go fetcher.RunRealtime(ctx, config.RealtimeInterval, func(ctx context.Context, runID string, articles []news.ArticleRaw) error {
			return scheduler.EnqueueArticles(runID, articles)
		})
	}

	handler := api.NewHandler(store, articleProcessor, fetcher, scheduler, config.TrendWindowHours, config.Version)
	server := api.NewServer(handler, config.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("News Comb shutdown complete")
}

// runOnce performs a single fetch, process and store pass and returns the exit code.
func runOnce(ctx context.Context, pipeline *tasks.Pipeline, proc *processor.Processor) int {
	task := tasks.NewRunPipelineTask(fmt.Sprintf("batch_%d", time.Now().Unix()), pipeline)
	task.Start()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Pipeline run failed", "run_id", task.RunID, "error", err)
		return 1
	}

	m := proc.Metrics()
	slog.Info("Pipeline run finished",
		"run_id", task.RunID,
		"processed", m.TotalProcessed,
		"successful", m.SuccessfulProcessed,
		"quality_failed", m.QualityFailed,
		"duration", task.GetDuration().String())

	return 0
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
