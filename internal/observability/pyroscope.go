package observability

import (
	"strconv"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/banebok/internal/config"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

// Workbook decoding dominates allocations and upstream waits dominate
// goroutines, so object counts and mutex/block profiles are left out.
var scheduleProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func profileTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"env":           cfg.AppEnv,
		"version":       cfg.ServiceVersion,
		"stadium_id":    strconv.Itoa(cfg.StadiumID),
		"cache_backend": cfg.CacheBackend,
	}
	if cfg.Location != nil {
		tags["timezone"] = cfg.Location.String()
	}
	return tags
}

// InitPyroscope starts continuous profiling when enabled. Schedule lookups add
// a "stage" label (fetch or parse) on top of these tags.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	tags := profileTags(cfg)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              tags,
		ProfileTypes:      scheduleProfileTypes,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"stadium_id", tags["stadium_id"],
	)

	return profiler.Stop, nil
}
