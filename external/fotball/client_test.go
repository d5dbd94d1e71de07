package fotball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/riskibarqy/banebok/internal/domain/match"
	"github.com/riskibarqy/banebok/internal/platform/logging"
	"github.com/riskibarqy/banebok/internal/platform/resilience"
	"github.com/riskibarqy/banebok/internal/usecase"
	"github.com/stretchr/testify/require"
)

var (
	testFrom = civil.Date{Year: 2024, Month: time.January, Day: 1}
	testTo   = civil.Date{Year: 2024, Month: time.January, Day: 7}
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		HTTPClient:   server.Client(),
		BaseURL:      server.URL + "/footballapi/Calendar/DownloadArenaExcelCalendar",
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return NewClient(cfg)
}

func TestFetchSchedule_SendsQueryAndReturnsBodyUnchanged(t *testing.T) {
	body := []byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00, 0x06, 0x00}
	var gotPath, gotStadium, gotFrom, gotTo string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStadium = r.URL.Query().Get("stadiumId")
		gotFrom = r.URL.Query().Get("fromDate")
		gotTo = r.URL.Query().Get("toDate")
		_, _ = w.Write(body)
	})

	raw, err := client.FetchSchedule(context.Background(), 25786, testFrom, testTo)
	require.NoError(t, err)
	require.Equal(t, body, raw)
	require.Equal(t, "/footballapi/Calendar/DownloadArenaExcelCalendar", gotPath)
	require.Equal(t, "25786", gotStadium)
	require.Equal(t, "2024-01-01", gotFrom)
	require.Equal(t, "2024-01-07", gotTo)
}

func TestFetchSchedule_NonSuccessCarriesStatusCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.Error(t, err)
	require.True(t, errors.Is(err, match.ErrFetch))

	var fetchErr *match.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	require.False(t, errors.Is(err, match.ErrEmptySchedule))
}

func TestFetchSchedule_EmptyBodyIsDistinctError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.Error(t, err)
	require.True(t, errors.Is(err, match.ErrFetch))
	require.True(t, errors.Is(err, match.ErrEmptySchedule))

	var fetchErr *match.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusOK, fetchErr.StatusCode)
}

func TestFetchSchedule_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestFetchSchedule_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("xlsx"))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 2 })

	raw, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.NoError(t, err)
	require.Equal(t, "xlsx", string(raw))
	require.EqualValues(t, 3, calls.Load())
}

func TestFetchSchedule_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestFetchSchedule_TransportErrorHasNoStatus(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://127.0.0.1:1/calendar",
		Timeout: time.Second,
		Logger:  logging.NewNop(),
	})

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.Error(t, err)

	var fetchErr *match.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Zero(t, fetchErr.StatusCode)
}

func TestFetchSchedule_CircuitOpensOnRepeatedUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
		require.True(t, errors.Is(err, match.ErrFetch))
	}

	_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
	require.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	require.EqualValues(t, 2, calls.Load())
}

func TestFetchSchedule_ClientErrorsDoNotTripCircuit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1}
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchSchedule(context.Background(), 1, testFrom, testTo)
		require.True(t, errors.Is(err, match.ErrFetch))
	}
	require.EqualValues(t, 3, calls.Load())
}
