package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/adapters/rest"
	"github.com/ewilliams-labs/emotunes/internal/adapters/spotify"
	"github.com/ewilliams-labs/emotunes/internal/adapters/sqlite"
	"github.com/ewilliams-labs/emotunes/internal/audio"
	"github.com/ewilliams-labs/emotunes/internal/cache"
	"github.com/ewilliams-labs/emotunes/internal/config"
	"github.com/ewilliams-labs/emotunes/internal/core/services"
	"github.com/ewilliams-labs/emotunes/internal/features"
	"github.com/ewilliams-labs/emotunes/internal/logger"
	"github.com/ewilliams-labs/emotunes/internal/worker"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	// 2. Driven adapters
	repo, err := sqlite.NewAdapter(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer repo.Close()

	fetcher := audio.NewFetcher(audio.FetcherConfig{
		MaxBytes:   cfg.MaxAudioBytes(),
		Formats:    cfg.AudioFormats,
		HTTPClient: &http.Client{Timeout: cfg.DownloadTimeout},
	}, log.Named("audio"))

	extractor := features.NewExtractor(features.Config{
		SampleRate: cfg.SampleRate,
		HopLength:  cfg.HopLength,
	})

	// 3. Core services
	analyzer := services.NewSongAnalyzer(fetcher, extractor, repo, cfg.SampleRate, log.Named("analyzer"))

	var catalog *services.CatalogService
	if cfg.Spotify.Enabled() {
		client := spotify.NewClient(spotify.Config{
			BaseURL:      cfg.Spotify.BaseURL,
			TokenURL:     cfg.Spotify.TokenURL,
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			MaxRetries:   cfg.Spotify.MaxRetries,
			BaseBackoff:  cfg.Spotify.RetryBackoff,
		}, log.Named("spotify"))
		catalogCache := cache.New[any](cache.Config{
			Name:       "catalog",
			TTL:        cfg.CacheTTL,
			MaxEntries: cfg.MaxCacheSize,
		}, cache.WithLogger(log.Named("cache")))
		catalog = services.NewCatalogService(client, catalogCache, log.Named("catalog"))
	} else {
		log.Warn("spotify credentials not set, catalog routes disabled")
	}

	// 4. Driving adapters
	pool := worker.NewPool(analyzer, cfg.AnalysisWorkers, cfg.AnalysisQueue, log.Named("worker")).
		WithJobTimeout(2 * cfg.DownloadTimeout)
	pool.Start()
	defer pool.Stop()

	handler := rest.NewHandler(analyzer, catalog, repo, pool, log.Named("http"))

	// 5. Serve
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("emotunes api listening", zap.String("addr", cfg.HTTPAddr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	}
}
