package app

import (
	"context"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/banebok/external/fotball"
	"github.com/riskibarqy/banebok/internal/config"
	"github.com/riskibarqy/banebok/internal/infrastructure/spreadsheet"
	"github.com/riskibarqy/banebok/internal/interfaces/httpapi"
	"github.com/riskibarqy/banebok/internal/platform/cache"
	"github.com/riskibarqy/banebok/internal/platform/logging"
	"github.com/riskibarqy/banebok/internal/platform/resilience"
	"github.com/riskibarqy/banebok/internal/usecase"
)

const redisPingTimeout = 3 * time.Second

// NewCacheBackend builds the backend selected by CACHE_BACKEND. The returned
// close function releases connections held by the backend.
func NewCacheBackend(cfg config.Config, logger *logging.Logger) (cache.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		logger.Info("schedule cache backend", "backend", cfg.CacheBackend)
		return cache.NewStore(), noop, nil
	case config.CacheBackendFile, "":
		store, err := cache.NewFileStore(cfg.CacheDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("schedule cache backend", "backend", config.CacheBackendFile, "dir", cfg.CacheDir)
		return store, noop, nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, crerr.Wrapf(err, "ping redis %s", cfg.RedisAddr)
		}

		logger.Info("schedule cache backend", "backend", cfg.CacheBackend, "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return cache.NewRedisStore(client, cfg.RedisKeyPrefix), client.Close, nil
	default:
		return nil, noop, crerr.Newf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func NewFotballClient(cfg config.Config, logger *logging.Logger) *fotball.Client {
	return fotball.NewClient(fotball.ClientConfig{
		BaseURL:    cfg.FotballBaseURL,
		Timeout:    cfg.FotballTimeout,
		MaxRetries: cfg.FotballMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FotballCircuitEnabled,
			FailureThreshold: cfg.FotballCircuitFailureCount,
			OpenTimeout:      cfg.FotballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FotballCircuitHalfOpenMaxReq,
		},
	})
}

func NewScheduleService(cfg config.Config, source *fotball.Client, backend cache.Backend, logger *logging.Logger) *usecase.ScheduleService {
	return usecase.NewScheduleService(
		source,
		spreadsheet.NewReader(spreadsheet.Options{
			HasHeaders: true,
			Columns:    spreadsheet.DefaultColumnMapping(),
			Location:   cfg.Location,
			Logger:     logger,
		}),
		backend,
		usecase.ScheduleCacheConfig{
			Enabled:     cfg.CacheEnabled,
			Lifetime:    cfg.CacheLifetime,
			DeleteFirst: cfg.CacheDeleteFirst,
		},
		logger,
	)
}

func NewCacheWarmer(cfg config.Config, schedules *usecase.ScheduleService, logger *logging.Logger) *usecase.CacheWarmer {
	return usecase.NewCacheWarmer(schedules, usecase.CacheWarmerConfig{
		StadiumID:   cfg.StadiumID,
		Weeks:       cfg.WarmWeeks,
		Concurrency: cfg.WarmConcurrency,
		Location:    cfg.Location,
	}, logger)
}

// NewHTTPServer wires the schedule pipeline behind the HTTP router.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, crerr.New("http server addr cannot be empty")
	}

	backend, closeBackend, err := NewCacheBackend(cfg, logger)
	if err != nil {
		return nil, nil, crerr.Wrap(err, "build cache backend")
	}

	schedules := NewScheduleService(cfg, NewFotballClient(cfg, logger), backend, logger)
	handler := httpapi.NewHandler(schedules, httpapi.HandlerConfig{
		StadiumID: cfg.StadiumID,
		Location:  cfg.Location,
		Debug:     cfg.Debug,
	}, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Debug:              cfg.Debug,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, closeBackend, nil
}
