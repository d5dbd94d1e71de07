package usecase

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	crerr "github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/cache"
	"github.com/riskibarqy/banebok/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheLifetime = time.Hour

type ScheduleCacheConfig struct {
	Enabled     bool
	Lifetime    time.Duration
	DeleteFirst bool
}

func DefaultScheduleCacheConfig() ScheduleCacheConfig {
	return ScheduleCacheConfig{
		Enabled:  true,
		Lifetime: DefaultCacheLifetime,
	}
}

// ScheduleService serves parsed schedules, keeping the raw upstream workbook in
// the cache backend for the configured lifetime.
type ScheduleService struct {
	source  match.ScheduleSource
	parser  match.ScheduleParser
	backend cache.Backend
	cfg     ScheduleCacheConfig
	logger  *logging.Logger
	flight  singleflight.Group
}

func NewScheduleService(
	source match.ScheduleSource,
	parser match.ScheduleParser,
	backend cache.Backend,
	cfg ScheduleCacheConfig,
	logger *logging.Logger,
) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	if backend == nil {
		backend = cache.NewStore()
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultCacheLifetime
	}

	return &ScheduleService{
		source:  source,
		parser:  parser,
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *ScheduleService) GetOrFetch(ctx context.Context, stadiumID int, from, to civil.Date) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetOrFetch")
	defer span.End()

	r := match.DateRange{From: from, To: to}
	key := match.CacheKey(r)
	span.SetAttributes(attribute.String("cache.key", key))

	raw, err := s.load(ctx, stadiumID, r, key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	items, err := s.parse(ctx, raw)
	if err != nil {
		span.RecordError(err)
		return nil, crerr.Wrapf(err, "parse schedule %s", key)
	}
	return items, nil
}

// Refresh downloads the range unconditionally, checks that it parses and
// replaces the cached copy. It returns the number of matches in the range.
func (s *ScheduleService) Refresh(ctx context.Context, stadiumID int, from, to civil.Date) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.Refresh")
	defer span.End()

	r := match.DateRange{From: from, To: to}
	key := match.CacheKey(r)

	raw, err := s.fetch(ctx, stadiumID, r)
	if err != nil {
		return 0, err
	}
	items, err := s.parse(ctx, raw)
	if err != nil {
		return 0, crerr.Wrapf(err, "parse schedule %s", key)
	}
	if s.cfg.Enabled {
		if err := s.backend.Set(ctx, key, raw, s.cfg.Lifetime); err != nil {
			return 0, crerr.Wrapf(crerr.Mark(err, match.ErrCache), "store schedule %s", key)
		}
	}
	return len(items), nil
}

func (s *ScheduleService) load(ctx context.Context, stadiumID int, r match.DateRange, key string) ([]byte, error) {
	if !s.cfg.Enabled {
		return s.fetch(ctx, stadiumID, r)
	}

	if s.cfg.DeleteFirst {
		if err := s.backend.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "evict cached schedule failed", "key", key, "error", crerr.Mark(err, match.ErrCache))
		}
	}

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "read cached schedule failed, fetching upstream", "key", key, "error", crerr.Mark(err, match.ErrCache))
	}
	if err == nil && ok {
		s.logger.DebugContext(ctx, "schedule cache hit", "key", key)
		return raw, nil
	}

	// Concurrent misses for one key share a single download. The download is
	// detached from the first caller's cancellation so the others still get it.
	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		body, err := s.fetch(detached, stadiumID, r)
		if err != nil {
			return nil, err
		}
		if err := s.backend.Set(detached, key, body, s.cfg.Lifetime); err != nil {
			s.logger.WarnContext(detached, "store schedule in cache failed", "key", key, "error", crerr.Mark(err, match.ErrCache))
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, crerr.WithStack(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		body, _ := res.Val.([]byte)
		return body, nil
	}
}

// Profiling labels for the two pipeline stages.
const (
	stageFetch = "fetch"
	stageParse = "parse"
)

func (s *ScheduleService) fetch(ctx context.Context, stadiumID int, r match.DateRange) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	profiled(ctx, stageFetch, func(ctx context.Context) {
		raw, err = s.source.FetchSchedule(ctx, stadiumID, r.From, r.To)
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch schedule stadium_id=%d %s..%s", stadiumID, r.From, r.To)
	}
	return raw, nil
}

func (s *ScheduleService) parse(ctx context.Context, raw []byte) ([]match.Match, error) {
	var (
		items []match.Match
		err   error
	)
	profiled(ctx, stageParse, func(ctx context.Context) {
		items, err = s.parser.Parse(ctx, raw)
	})
	return items, err
}

// profiled runs fn under a pprof "stage" label so Pyroscope can split
// download time from workbook decoding.
func profiled(ctx context.Context, stage string, fn func(context.Context)) {
	pyroscope.TagWrapper(ctx, pyroscope.Labels("stage", stage), fn)
}
