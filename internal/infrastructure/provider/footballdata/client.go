package footballdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/platform/cache"
	"github.com/predictball/predictor-league/internal/platform/logging"
	"github.com/predictball/predictor-league/internal/platform/resilience"
	"github.com/predictball/predictor-league/internal/usecase"
)

const defaultTimeout = 15 * time.Second
const maxResponseBytes = 6 << 20

var errFootballDataTransient = crerr.New("football data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches finished gameweek results from the football data provider.
// Results for a finished gameweek never change, so responses are cached and
// concurrent fetches of the same gameweek collapse into one request.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	results        *cache.Store
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

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		results:        cache.NewStore(cfg.CacheTTL),
	}
}

// ResultsForGameweek returns every finished fixture of the gameweek. A
// gameweek unknown to the provider maps to usecase.ErrNotFound.
func (c *Client) ResultsForGameweek(ctx context.Context, gameweek int) ([]fixture.Fixture, error) {
	if gameweek < 1 {
		return nil, fmt.Errorf("gameweek must be greater than zero, got %d", gameweek)
	}

	key := "results/" + strconv.Itoa(gameweek)
	out, err := c.results.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetchResults(ctx, gameweek)
	})
	if err != nil {
		return nil, err
	}

	fixtures, ok := out.([]fixture.Fixture)
	if !ok {
		return nil, fmt.Errorf("unexpected cached payload type %T", out)
	}
	return fixtures, nil
}

func (c *Client) fetchResults(ctx context.Context, gameweek int) ([]fixture.Fixture, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football data circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: results provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	values.Set("gameweek", strconv.Itoa(gameweek))
	fullURL := c.baseURL + "/v1/results?" + values.Encode()

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errFootballDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	docs, err := decodeResults(raw)
	if err != nil {
		return nil, err
	}

	fixtures := make([]fixture.Fixture, 0, len(docs))
	for _, doc := range docs {
		item := doc.toFixture(gameweek)
		if !item.Finished {
			continue
		}
		fixtures = append(fixtures, item)
	}
	return fixtures, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, done, err := c.doOnce(ctx, fullURL)
		if done {
			return raw, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("results request failed")
	}
	c.logger.WarnContext(ctx, "football data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// doOnce performs one attempt. done=false means the failure is transient
// and worth retrying.
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, true, fmt.Errorf("build results request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: send request: %v", errFootballDataTransient, err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(http.MaxBytesReader(nil, resp.Body, maxResponseBytes)); err != nil {
		return nil, false, fmt.Errorf("%w: read response body: %v", errFootballDataTransient, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		raw := make([]byte, buf.Len())
		copy(raw, buf.Bytes())
		return raw, true, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, true, fmt.Errorf("%w: no results for requested gameweek", usecase.ErrNotFound)
	case isRetryableStatus(resp.StatusCode):
		return nil, false, fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(buf.Bytes()))
	default:
		return nil, true, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.Bytes()))
	}
}

type resultEnvelope struct {
	Data []resultDoc `json:"data"`
}

type resultDoc struct {
	ID         string         `json:"id"`
	Gameweek   int            `json:"gameweek"`
	HomeTeamID string         `json:"homeTeamId"`
	AwayTeamID string         `json:"awayTeamId"`
	HomeScore  int            `json:"homeScore"`
	AwayScore  int            `json:"awayScore"`
	Finished   bool           `json:"finished"`
	StatEvents []statEventDoc `json:"statEvents"`
}

type statEventDoc struct {
	Identifier string `json:"identifier"`
	PlayerID   string `json:"playerId"`
}

// decodeResults accepts both response shapes the provider has shipped: a
// bare fixture array and a {"data": [...]} envelope.
func decodeResults(raw []byte) ([]resultDoc, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []resultDoc
		if err := sonic.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("decode results array: %w", err)
		}
		return docs, nil
	}

	var envelope resultEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode results envelope: %w", err)
	}
	return envelope.Data, nil
}

func (d resultDoc) toFixture(gameweek int) fixture.Fixture {
	if d.Gameweek == 0 {
		d.Gameweek = gameweek
	}

	events := make([]fixture.StatEvent, 0, len(d.StatEvents))
	for _, event := range d.StatEvents {
		events = append(events, fixture.StatEvent{
			Identifier: fixture.StatIdentifier(event.Identifier),
			PlayerID:   event.PlayerID,
		})
	}

	return fixture.Fixture{
		ID:         d.ID,
		Gameweek:   d.Gameweek,
		HomeTeamID: d.HomeTeamID,
		AwayTeamID: d.AwayTeamID,
		HomeScore:  d.HomeScore,
		AwayScore:  d.AwayScore,
		StatEvents: events,
		Finished:   d.Finished,
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	const maxLen = 256
	text := strings.TrimSpace(string(body))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
