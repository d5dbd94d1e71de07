package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/logging"
)

const maxRequestBodyBytes = 64 << 10

// ScheduleReader is the read side of the schedule cache.
type ScheduleReader interface {
	GetOrFetch(ctx context.Context, stadiumID int, from, to civil.Date) ([]match.Match, error)
}

type HandlerConfig struct {
	StadiumID int
	Location  *time.Location
	Debug     bool
}

type Handler struct {
	schedules ScheduleReader
	cfg       HandlerConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewHandler(schedules ScheduleReader, cfg HandlerConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Handler{
		schedules: schedules,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type listMatchesRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type listMatchesResponse struct {
	Matches []match.Match   `json:"matches"`
	Dates   match.DateRange `json:"dates"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	dates := h.resolveDates(ctx, h.decodeListMatchesRequest(ctx, w, r))

	items, err := h.schedules.GetOrFetch(ctx, h.cfg.StadiumID, dates.From, dates.To)
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "list matches failed",
			"stadium_id", h.cfg.StadiumID,
			"from", dates.From.String(),
			"to", dates.To.String(),
			"error", err,
		)
		writeFailure(ctx, w, err, h.cfg.Debug)
		return
	}
	if items == nil {
		items = []match.Match{}
	}

	writeJSON(ctx, w, http.StatusOK, listMatchesResponse{
		Matches: items,
		Dates:   dates,
	})
}

// decodeListMatchesRequest treats an empty or unreadable body as {}.
func (h *Handler) decodeListMatchesRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) listMatchesRequest {
	var payload listMatchesRequest
	if r.Body == nil {
		return payload
	}

	decoder := jsoniter.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&payload); err != nil && err != io.EOF {
		h.logger.WarnContext(ctx, "invalid list matches body, using current week", "error", err)
		return listMatchesRequest{}
	}
	return payload
}

// resolveDates fills missing or unparsable bounds with the current week in the configured timezone.
func (h *Handler) resolveDates(ctx context.Context, payload listMatchesRequest) match.DateRange {
	dates := match.CurrentWeek(h.now().In(h.cfg.Location))

	if payload.From != "" {
		from, err := match.ParseDate(payload.From, h.cfg.Location)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid from date, using start of week", "from", payload.From, "error", err)
		} else {
			dates.From = from
		}
	}
	if payload.To != "" {
		to, err := match.ParseDate(payload.To, h.cfg.Location)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid to date, using end of week", "to", payload.To, "error", err)
		} else {
			dates.To = to
		}
	}

	return dates
}
