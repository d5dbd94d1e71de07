package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

const (
	warmStatusSuccess = "success"
	warmStatusFailed  = "failed"

	defaultWarmConcurrency = 2
	maxWarmWeeks           = 52
)

type CacheWarmerConfig struct {
	StadiumID   int
	Weeks       int
	Concurrency int
	Location    *time.Location
}

type WarmWeekResult struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Status     string `json:"status"`
	Matches    int    `json:"matches"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type WarmResult struct {
	WeekCount    int              `json:"week_count"`
	WorkerCount  int              `json:"worker_count"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	Weeks        []WarmWeekResult `json:"weeks"`
}

// CacheWarmer refreshes the current week and the following ones so the first
// visitor of a week is served from cache.
type CacheWarmer struct {
	schedules *ScheduleService
	cfg       CacheWarmerConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewCacheWarmer(schedules *ScheduleService, cfg CacheWarmerConfig, logger *logging.Logger) *CacheWarmer {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CacheWarmer{
		schedules: schedules,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Ranges lists the weeks a Warm run covers, current week first.
func (w *CacheWarmer) Ranges() []match.DateRange {
	weeks := w.cfg.Weeks
	if weeks < 0 {
		weeks = 0
	}
	if weeks > maxWarmWeeks {
		weeks = maxWarmWeeks
	}

	current := match.CurrentWeek(w.now().In(w.cfg.Location))
	out := make([]match.DateRange, 0, weeks+1)
	for i := 0; i <= weeks; i++ {
		out = append(out, match.WeekAfter(current, i))
	}
	return out
}

func (w *CacheWarmer) Warm(ctx context.Context) (WarmResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CacheWarmer.Warm")
	defer span.End()

	ranges := w.Ranges()
	workerCount := normalizeWarmWorkerCount(w.cfg.Concurrency, len(ranges))
	result := WarmResult{
		WeekCount:   len(ranges),
		WorkerCount: workerCount,
		Weeks:       make([]WarmWeekResult, 0, len(ranges)),
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return WarmResult{}, crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make(chan WarmWeekResult, len(ranges))
	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, r := range ranges {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := WarmWeekResult{From: r.From.String(), To: r.To.String()}
			count, err := w.schedules.Refresh(ctx, w.cfg.StadiumID, r.From, r.To)
			row.DurationMs = time.Since(start).Milliseconds()
			if err != nil {
				row.Status = warmStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				w.logger.WarnContext(ctx, "warm schedule week failed", "from", row.From, "to", row.To, "error", err)
			} else {
				row.Status = warmStatusSuccess
				row.Matches = count
				successCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			workers.Wait()
			return WarmResult{}, crerr.Wrap(err, "submit week to worker pool")
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Weeks = append(result.Weeks, row)
	}
	sort.SliceStable(result.Weeks, func(i, j int) bool {
		return result.Weeks[i].From < result.Weeks[j].From
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	w.logger.InfoContext(ctx, "schedule cache warmed",
		"weeks", result.WeekCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func normalizeWarmWorkerCount(requested, tasks int) int {
	if requested <= 0 {
		requested = defaultWarmConcurrency
	}
	if tasks > 0 && requested > tasks {
		requested = tasks
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
