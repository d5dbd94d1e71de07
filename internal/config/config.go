package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	CacheBackendFile   = "file"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config stores runtime configuration for the service. The env tag names the
// variable each field is read from and is used in validation messages.
type Config struct {
	AppEnv             string         `env:"APP_ENV" validate:"oneof=dev stage prod"`
	ServiceName        string         `env:"APP_SERVICE_NAME" validate:"required"`
	ServiceVersion     string         `env:"APP_SERVICE_VERSION"`
	HTTPAddr           string         `env:"APP_HTTP_ADDR" validate:"required"`
	ReadTimeout        time.Duration  `env:"APP_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout       time.Duration  `env:"APP_WRITE_TIMEOUT" validate:"gt=0"`
	LogLevel           logging.Level  `env:"APP_LOG_LEVEL"`
	Debug              bool           `env:"APP_DEBUG"`
	Timezone           string         `env:"APP_TIMEZONE" validate:"required"`
	Location           *time.Location `env:"-" validate:"required"`
	LogErrorFile       string         `env:"LOG_ERROR_FILE"`
	CORSAllowedOrigins []string       `env:"CORS_ALLOWED_ORIGINS"`

	StadiumID                    int           `env:"STADIUM_ID" validate:"gt=0"`
	FotballBaseURL               string        `env:"FOTBALL_BASE_URL" validate:"required,url"`
	FotballTimeout               time.Duration `env:"FOTBALL_TIMEOUT" validate:"gt=0"`
	FotballMaxRetries            int           `env:"FOTBALL_MAX_RETRIES" validate:"gte=0,lte=5"`
	FotballCircuitEnabled        bool          `env:"FOTBALL_CIRCUIT_ENABLED"`
	FotballCircuitFailureCount   int           `env:"FOTBALL_CIRCUIT_FAILURE_COUNT" validate:"gte=1"`
	FotballCircuitOpenTimeout    time.Duration `env:"FOTBALL_CIRCUIT_OPEN_TIMEOUT" validate:"gt=0"`
	FotballCircuitHalfOpenMaxReq int           `env:"FOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ" validate:"gte=1"`

	CacheEnabled     bool          `env:"CACHE_ENABLED"`
	CacheLifetime    time.Duration `env:"CACHE_LIFETIME" validate:"gt=0"`
	CacheDeleteFirst bool          `env:"CACHE_DELETE_FIRST"`
	CacheBackend     string        `env:"CACHE_BACKEND" validate:"oneof=file memory redis"`
	CacheDir         string        `env:"CACHE_DIR" validate:"required_if=CacheBackend file"`
	RedisAddr        string        `env:"REDIS_ADDR" validate:"required_if=CacheBackend redis"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" validate:"gte=0"`
	RedisKeyPrefix   string        `env:"REDIS_KEY_PREFIX"`

	WarmWeeks       int `env:"WARM_WEEKS" validate:"gte=0,lte=52"`
	WarmConcurrency int `env:"WARM_CONCURRENCY" validate:"gte=1,lte=16"`

	PprofEnabled bool   `env:"PPROF_ENABLED"`
	PprofAddr    string `env:"PPROF_ADDR" validate:"required_if=PprofEnabled true"`

	UptraceEnabled     bool   `env:"UPTRACE_ENABLED"`
	UptraceDSN         string `env:"UPTRACE_DSN" validate:"required_if=UptraceEnabled true"`
	UptraceLogsEnabled bool   `env:"UPTRACE_LOGS_ENABLED"`

	PyroscopeEnabled           bool          `env:"PYROSCOPE_ENABLED"`
	PyroscopeServerAddress     string        `env:"PYROSCOPE_SERVER_ADDRESS" validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName           string        `env:"PYROSCOPE_APP_NAME"`
	PyroscopeAuthToken         string        `env:"PYROSCOPE_AUTH_TOKEN"`
	PyroscopeBasicAuthUser     string        `env:"PYROSCOPE_BASIC_AUTH_USER"`
	PyroscopeBasicAuthPassword string        `env:"PYROSCOPE_BASIC_AUTH_PASSWORD"`
	PyroscopeUploadRate        time.Duration `env:"PYROSCOPE_UPLOAD_RATE" validate:"gt=0"`
}

func Load() (Config, error) {
	var err error
	cfg := Config{
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "banebok")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		Timezone:           strings.TrimSpace(getEnv("APP_TIMEZONE", "Europe/Oslo")),
		LogErrorFile:       strings.TrimSpace(getEnv("LOG_ERROR_FILE", "")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "https://localhost:5173")),
		FotballBaseURL:     strings.TrimSpace(getEnv("FOTBALL_BASE_URL", "https://www.fotball.no/footballapi/Calendar/DownloadArenaExcelCalendar")),
		CacheBackend:       strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendFile))),
		CacheDir:           strings.TrimSpace(getEnv("CACHE_DIR", "tmp/cache")),
		RedisAddr:          strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "banebok:"),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeAppName:   strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", "banebok")),

		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
	}

	if cfg.AppEnv, err = parseAppEnv(getEnv("APP_ENV", EnvDev)); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"APP_DEBUG", "false", &cfg.Debug},
		{"FOTBALL_CIRCUIT_ENABLED", "true", &cfg.FotballCircuitEnabled},
		{"CACHE_ENABLED", "true", &cfg.CacheEnabled},
		{"CACHE_DELETE_FIRST", "false", &cfg.CacheDeleteFirst},
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"UPTRACE_LOGS_ENABLED", "true", &cfg.UptraceLogsEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
	}
	for _, item := range bools {
		if *item.dst, err = strconv.ParseBool(getEnv(item.key, item.fallback)); err != nil {
			return Config{}, crerr.Wrapf(err, "parse %s", item.key)
		}
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"STADIUM_ID", 0, &cfg.StadiumID},
		{"FOTBALL_MAX_RETRIES", 0, &cfg.FotballMaxRetries},
		{"FOTBALL_CIRCUIT_FAILURE_COUNT", 3, &cfg.FotballCircuitFailureCount},
		{"FOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 1, &cfg.FotballCircuitHalfOpenMaxReq},
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"WARM_WEEKS", 2, &cfg.WarmWeeks},
		{"WARM_CONCURRENCY", 2, &cfg.WarmConcurrency},
	}
	for _, item := range ints {
		if *item.dst, err = getEnvAsInt(item.key, item.fallback); err != nil {
			return Config{}, crerr.Wrapf(err, "parse %s", item.key)
		}
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"APP_READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", "60s", &cfg.WriteTimeout},
		{"FOTBALL_TIMEOUT", "20s", &cfg.FotballTimeout},
		{"FOTBALL_CIRCUIT_OPEN_TIMEOUT", "30s", &cfg.FotballCircuitOpenTimeout},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		if *item.dst, err = time.ParseDuration(getEnv(item.key, item.fallback)); err != nil {
			return Config{}, crerr.Wrapf(err, "parse %s", item.key)
		}
	}

	if cfg.CacheLifetime, err = getEnvAsSeconds("CACHE_LIFETIME", time.Hour); err != nil {
		return Config{}, crerr.Wrap(err, "parse CACHE_LIFETIME")
	}

	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, crerr.Wrapf(err, "load APP_TIMEZONE %q", cfg.Timezone)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("env")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate reports every invalid field by its environment variable name.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !crerr.As(err, &fieldErrs) {
		return crerr.Wrap(err, "validate config")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fe.Field()+" failed "+rule)
	}
	return crerr.Newf("invalid config: %s", strings.Join(msgs, "; "))
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsSeconds accepts a plain number of seconds or a Go duration string.
func getEnvAsSeconds(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", crerr.Newf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
