package sleeper

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/time/rate"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/platform/resilience"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

const (
	ProviderName   = "sleeper"
	defaultBaseURL = "https://api.sleeper.app/v1"
	// The full NFL player map is several megabytes.
	maxResponseBytes = 48 << 20
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitBreaker    resilience.BreakerConfig
}

// Client reads the public Sleeper NFL endpoints. It serves both the weekly
// stats provider and the player catalog.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logging.Logger
	breaker      *resilience.Breaker
	flight       resilience.Flight[[]byte]
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
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	breakerCfg := cfg.CircuitBreaker
	breakerCfg.Name = ProviderName
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "dependency", name, "from", from, "to", to)
		}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger,
		breaker:      resilience.NewBreaker(breakerCfg),
	}
}

func (c *Client) Name() string {
	return ProviderName
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: sleeper is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	raw, _, err := c.flight.Do(ctx, fullURL, func() ([]byte, error) {
		body, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && isCircuitFailure(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return body, reqErr
	})
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode sleeper payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSleeperTransient, err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSleeperTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSleeperTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, &statusError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// readBody copies the body through a pooled buffer; the returned slice is
// owned by the caller.
func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseBytes)); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.StatusCode, e.Body)
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errSleeperTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
