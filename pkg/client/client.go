// Package client provides the retrying HTTP transport for the FPDS ATOM feed.
package client

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for FPDS client operations.
var (
	fpdsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpds_requests_total",
		Help: "Total FPDS requests by status",
	}, []string{"status"})

	fpdsRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fpds_request_duration_seconds",
		Help:    "FPDS request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	fpdsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpds_errors_total",
		Help: "Total FPDS request failures by kind",
	}, []string{"kind"})
)

// DefaultUserAgent identifies the client to the feed.
const DefaultUserAgent = "fpds-client/0.1.0"

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Per-call timeout
	Timeout time.Duration

	// Retry
	RetryAttempts int
	RetryDelay    time.Duration

	// Static pacing across all calls. 0 disables it.
	RequestsPerSecond float64
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	retry := DefaultRetryConfig()
	return Config{
		UserAgent:     userAgent,
		Timeout:       30 * time.Second,
		RetryAttempts: retry.Attempts,
		RetryDelay:    retry.Delay,
	}
}

// Client fetches raw feed pages. Safe for concurrent use.
type Client struct {
	httpClient Doer
	sleeper    Sleeper
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new FPDS client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}
	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("retry_attempts must be >= 1 (got %d)", cfg.RetryAttempts)
	}
	if cfg.RetryDelay < 0 {
		return nil, fmt.Errorf("retry_delay must be >= 0 (got %s)", cfg.RetryDelay)
	}

	c := &Client{
		httpClient: &http.Client{},
		sleeper:    timerSleeper{},
		config:     cfg,
		logger:     log.With().Str("component", "fpds-client").Logger(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// FetchOnce performs a single GET with the configured per-call timeout.
// Non-2xx responses fail with a KindRequest error, transport failures and
// timeouts with a KindNetwork error.
func (c *Client) FetchOnce(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apierror.Network(url, err)
		}
	}

	startTime := time.Now()
	defer func() {
		fpdsRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apierror.Network(url, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	c.logger.Debug().Str("url", url).Msg("Executing FPDS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fpdsErrorsTotal.WithLabelValues(string(apierror.KindNetwork)).Inc()
		fpdsRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Debug().Err(err).Str("url", url).Msg("HTTP request failed")
		return nil, apierror.Network(url, err)
	}
	defer resp.Body.Close()

	fpdsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		fpdsErrorsTotal.WithLabelValues(string(apierror.KindRequest)).Inc()
		c.logger.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("FPDS request error")
		return nil, apierror.Request(url, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fpdsErrorsTotal.WithLabelValues(string(apierror.KindNetwork)).Inc()
		return nil, apierror.Network(url, fmt.Errorf("read response body: %w", err))
	}

	body, err = decodeBody(resp.Header.Get("Content-Encoding"), body)
	if err != nil {
		fpdsErrorsTotal.WithLabelValues(string(apierror.KindNetwork)).Inc()
		return nil, apierror.Network(url, err)
	}

	return body, nil
}

// FetchWithRetry wraps FetchOnce in the exponential backoff loop. The error
// of the final attempt is returned as is.
func (c *Client) FetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	cfg := RetryConfig{Attempts: c.config.RetryAttempts, Delay: c.config.RetryDelay}
	logger := c.logger.With().Str("url", url).Logger()

	err := retryWithBackoff(ctx, cfg, c.sleeper, logger, func(int) error {
		b, err := c.FetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodeBody undoes gzip or deflate content encoding. Setting
// Accept-Encoding by hand disables net/http's transparent decompression.
func decodeBody(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer zr.Close()
		return readDecoded(zr, "gzip")
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			return readDecoded(zr, "deflate")
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return readDecoded(fr, "deflate")
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func readDecoded(r io.Reader, encoding string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s body: %w", encoding, err)
	}
	return out, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client Doer) {
	c.httpClient = client
}

// SetSleeper replaces the backoff sleeper (for testing).
func (c *Client) SetSleeper(s Sleeper) {
	c.sleeper = s
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}
