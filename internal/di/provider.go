package di

import (
	"context"
	"log/slog"

	"github.com/pannpers/go-logging/logging"

	adapterhttp "github.com/talivision/where-am-i-listening/internal/adapter/http"
	"github.com/talivision/where-am-i-listening/internal/entity"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/encyclopedia/wikipedia"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/geocode"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/geocode/nominatim"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/geocode/photon"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/knowledge/wikidata"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/music/musicbrainz"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/server"
	"github.com/talivision/where-am-i-listening/internal/resolver"
	"github.com/talivision/where-am-i-listening/pkg/cache"
	"github.com/talivision/where-am-i-listening/pkg/config"
	"github.com/talivision/where-am-i-listening/pkg/shutdown"
)

// InitializeApp creates a new App with all dependencies wired up manually.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load("APP")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Warn(ctx, "⚠️  CORS not configured, browser requests will fail")
	}

	mbClient := musicbrainz.NewClient(nil, logger, cfg.Resolver.MusicBrainzPaceMS)
	wikidataClient := wikidata.NewClient(nil, logger, cfg.Resolver.SoftRateLimitPerSecond)
	wikipediaClient := wikipedia.NewClient(nil, logger, cfg.Resolver.SoftRateLimitPerSecond)
	nominatimClient := nominatim.NewClient(nil, logger, cfg.Resolver.SoftRateLimitPerSecond)
	photonClient := photon.NewClient(nil, logger, cfg.Resolver.SoftRateLimitPerSecond)
	geoCascade := geocode.NewCascade(nominatimClient, photonClient, logger)

	res := resolver.New(mbClient, mbClient, mbClient, wikipediaClient, wikidataClient, geoCascade, logger)

	var locationCache entity.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		locationCache = redisCache
	} else {
		logger.Warn(ctx, "⚠️  Redis not configured, falling back to in-memory cache")
		locationCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	handler := adapterhttp.NewHandler(res, geoCascade, locationCache, cfg.Resolver.MaxBatchSize, cfg.Resolver.BatchInterResolveSleepMS, logger)

	healthServer := server.NewHealthServer(cfg.Server.Host + ":8081")
	srv := server.NewServer(cfg, logger, handler)

	// Initialize the shutdown package for phased resource teardown.
	shutdown.Init(logger)

	// Drain: the health server, the REST server, and the cache (its
	// background sweep, if any) are closed concurrently within the phase.
	shutdown.AddDrainPhase(healthServer, srv, locationCache)
	shutdown.AddExternalPhase(mbClient)

	return &App{
		Server:          srv,
		HealthServer:    healthServer,
		Logger:          logger,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	var opts []logging.Option
	switch cfg.Logging.Level {
	case "debug":
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	case "info":
		opts = append(opts, logging.WithLevel(slog.LevelInfo))
	case "warn":
		opts = append(opts, logging.WithLevel(slog.LevelWarn))
	case "error":
		opts = append(opts, logging.WithLevel(slog.LevelError))
	}
	switch cfg.Logging.Format {
	case "text":
		opts = append(opts, logging.WithFormat(logging.FormatText))
	case "json":
		opts = append(opts, logging.WithFormat(logging.FormatJSON))
	}
	return logging.New(opts...)
}
