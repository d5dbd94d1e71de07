package fotball

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/logging"
	"github.com/riskibarqy/banebok/internal/platform/resilience"
	"github.com/riskibarqy/banebok/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	DefaultBaseURL = "https://www.fotball.no/footballapi/Calendar/DownloadArenaExcelCalendar"

	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 16 << 20
)

var errTransient = crerr.New("fotball transient failure")

var bodyPool bytebufferpool.Pool

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client downloads arena calendars as xlsx workbooks.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// FetchSchedule returns the raw calendar workbook for stadiumID between from and to, inclusive.
// The body is returned exactly as received.
func (c *Client) FetchSchedule(ctx context.Context, stadiumID int, from, to civil.Date) ([]byte, error) {
	fullURL, err := c.scheduleURL(stadiumID, from, to)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "fetching schedule from fotball.no",
		"stadium_id", stadiumID,
		"from", from.String(),
		"to", to.String(),
	)

	var raw []byte
	err = c.breaker.Do(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, fullURL)
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "fotball circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Wrap(usecase.ErrDependencyUnavailable, "fotball.no calendar is temporarily unavailable")
		}
		return nil, err
	}

	return raw, nil
}

func (c *Client) scheduleURL(stadiumID int, from, to civil.Date) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", crerr.Wrapf(err, "parse fotball base url %q", c.baseURL)
	}

	values := base.Query()
	values.Set("stadiumId", strconv.Itoa(stadiumID))
	values.Set("fromDate", from.String())
	values.Set("toDate", to.String())
	base.RawQuery = values.Encode()
	return base.String(), nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errTransient) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &match.FetchError{Err: crerr.WithStack(ctx.Err())}
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "fotball request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &match.FetchError{Err: crerr.Wrap(err, "build request")}
	}
	req.Header.Set("accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &match.FetchError{Err: crerr.WithStack(ctx.Err())}
		}
		return nil, &match.FetchError{Err: crerr.Mark(crerr.Wrap(err, "send request"), errTransient)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		cause := crerr.Newf("could not retrieve matches, status code %d", resp.StatusCode)
		if isRetryableStatus(resp.StatusCode) {
			cause = crerr.Mark(cause, errTransient)
		}
		return nil, &match.FetchError{StatusCode: resp.StatusCode, Err: cause}
	}

	buf := bodyPool.Get()
	defer bodyPool.Put(buf)

	n, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &match.FetchError{
			StatusCode: resp.StatusCode,
			Err:        crerr.Mark(crerr.Wrap(err, "read response body"), errTransient),
		}
	}
	if n > maxBodyBytes {
		return nil, &match.FetchError{
			StatusCode: resp.StatusCode,
			Err:        crerr.Newf("response body exceeds %d bytes", maxBodyBytes),
		}
	}
	if n == 0 {
		return nil, &match.FetchError{
			StatusCode: resp.StatusCode,
			Err:        crerr.WithStack(match.ErrEmptySchedule),
		}
	}

	// buf returns to the pool, so hand out a copy.
	out := make([]byte, n)
	copy(out, buf.B)
	return out, nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
