// Command warmcache downloads the current and upcoming weeks into the schedule
// cache. Run it from cron shortly before the week rolls over.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/banebok/internal/app"
	"github.com/riskibarqy/banebok/internal/config"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Service:   cfg.ServiceName + "-warmcache",
		Version:   cfg.ServiceVersion,
		ErrorFile: cfg.LogErrorFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if !cfg.CacheEnabled {
		logger.Warn("schedule cache disabled, nothing to warm", "reason", "CACHE_ENABLED=false")
		return 0
	}
	if cfg.CacheBackend == config.CacheBackendMemory {
		logger.Warn("memory cache backend does not outlive this process, nothing to warm")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := app.NewCacheBackend(cfg, logger)
	if err != nil {
		logger.Error("build cache backend", "error", err)
		return 1
	}
	defer func() { _ = closeBackend() }()

	schedules := app.NewScheduleService(cfg, app.NewFotballClient(cfg, logger), backend, logger)
	result, err := app.NewCacheWarmer(cfg, schedules, logger).Warm(ctx)
	if err != nil {
		logger.Error("warm schedule cache", "error", err)
		return 1
	}

	_ = sonic.ConfigDefault.NewEncoder(os.Stdout).Encode(result)
	if result.FailedCount > 0 {
		return 2
	}
	return 0
}
