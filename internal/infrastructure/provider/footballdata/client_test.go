package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/predictball/predictor-league/internal/platform/logging"
	"github.com/predictball/predictor-league/internal/platform/resilience"
	"github.com/predictball/predictor-league/internal/usecase"
)

func newTestClient(srv *httptest.Server, maxRetries int) *Client {
	return NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		MaxRetries: maxRetries,
		CacheTTL:   time.Minute,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})
}

func TestResultsForGameweek_ParsesEnvelopeShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/results" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("gameweek"); got != "4" {
			t.Errorf("unexpected gameweek query: %s", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("unexpected api key header: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"fx1","gameweek":4,"homeTeamId":"t1","awayTeamId":"t2","homeScore":2,"awayScore":1,"finished":true,
			 "statEvents":[{"identifier":"goal","playerId":"p1"},{"identifier":"assist","playerId":"p2"}]},
			{"id":"fx2","gameweek":4,"homeTeamId":"t3","awayTeamId":"t4","homeScore":0,"awayScore":0,"finished":false}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0)

	fixtures, err := client.ResultsForGameweek(context.Background(), 4)
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("unfinished fixtures must be dropped: got=%d want=1", len(fixtures))
	}
	fx := fixtures[0]
	if fx.ID != "fx1" || fx.HomeScore != 2 || fx.AwayScore != 1 {
		t.Fatalf("unexpected fixture: %+v", fx)
	}
	if len(fx.StatEvents) != 2 {
		t.Fatalf("unexpected stat events: %+v", fx.StatEvents)
	}
}

func TestResultsForGameweek_ParsesBareArrayShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"fx1","gameweek":2,"homeScore":1,"awayScore":1,"finished":true}]`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0)

	fixtures, err := client.ResultsForGameweek(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if len(fixtures) != 1 || fixtures[0].ID != "fx1" {
		t.Fatalf("unexpected fixtures: %+v", fixtures)
	}
}

func TestResultsForGameweek_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown gameweek", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv, 2)

	_, err := client.ResultsForGameweek(context.Background(), 99)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResultsForGameweek_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"fx1","gameweek":1,"homeScore":1,"awayScore":0,"finished":true}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 2)

	fixtures, err := client.ResultsForGameweek(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("unexpected fixtures: %+v", fixtures)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
}

func TestResultsForGameweek_CachesFinishedResults(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"fx1","gameweek":1,"homeScore":1,"awayScore":0,"finished":true}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0)

	for i := 0; i < 3; i++ {
		if _, err := client.ResultsForGameweek(context.Background(), 1); err != nil {
			t.Fatalf("fetch results: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("repeat fetches must hit the cache: got %d calls", calls.Load())
	}
}

func TestResultsForGameweek_CircuitBreakerShortCircuits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		MaxRetries: 0,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.ResultsForGameweek(context.Background(), 1); err == nil {
		t.Fatalf("expected upstream failure")
	}
	_, err := client.ResultsForGameweek(context.Background(), 2)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once the breaker is open, got %v", err)
	}
}
