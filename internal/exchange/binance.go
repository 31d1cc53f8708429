package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/Manu2954/MarketSummariser-2.0/internal/config"
	apperrors "github.com/Manu2954/MarketSummariser-2.0/internal/errors"
)

const (
	// Rate limiting configuration. The politeness cap sits in front of
	// every request on top of the configured inter-page delay.
	maxRequestsPerSecond = 10
	rateLimitBurst       = 1

	// Retry configuration, used only when request.max_attempts > 1.
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 30 * time.Second

	// Transport tuning
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second

	userAgent = "marketsummariser/2.0"

	// errorBodyLimit caps how much of an upstream error payload is
	// carried into error messages and logs.
	errorBodyLimit = 512
)

// Client fetches kline rows from the Binance spot REST API (or any
// server speaking the same protocol) with cursor-based pagination.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	klinesPath  string
	pageLimit   int
	pageDelay   time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewClient creates a kline client from the request configuration.
func NewClient(cfg config.RequestConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
		rateLimiter: rate.NewLimiter(rate.Limit(maxRequestsPerSecond), rateLimitBurst),
		baseURL:     cfg.BaseURL,
		klinesPath:  cfg.KlinesPath,
		pageLimit:   cfg.Limit,
		pageDelay:   cfg.SleepDuration(),
		maxAttempts: cfg.MaxAttempts,
		logger:      slog.Default().With("component", "binance_client"),
	}
}

// NewClientWithLogger creates a kline client with a custom logger.
func NewClientWithLogger(cfg config.RequestConfig, logger *slog.Logger) *Client {
	client := NewClient(cfg)
	client.logger = logger
	return client
}

// FetchKlines implements the KlineSource interface.
//
// It pages forward from the request start, advancing the cursor to the
// last row's close time + 1ms after every full page, and stops on an
// empty page, a short page, or a row closing at or past the end bound.
// Any request failure aborts the whole fetch; rows from earlier pages
// are discarded so callers never observe a partial range.
func (c *Client) FetchKlines(ctx context.Context, req FetchRequest) ([]RawKline, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	cursor := req.Start.UnixMilli()
	var endMS int64
	if req.Bounded() {
		endMS = req.End.UnixMilli()
	}

	c.logger.Debug("fetching klines",
		"symbol", req.Symbol,
		"interval", req.Interval,
		"start_ms", cursor,
		"end_ms", endMS)

	var rows []RawKline
	pages := 0
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, c.fetchError(err, "rate limit wait interrupted", req, cursor)
		}

		page, err := c.fetchPage(ctx, req.Symbol, req.Interval, cursor, endMS)
		if err != nil {
			return nil, c.fetchError(err, "kline request failed", req, cursor)
		}
		pages++

		if len(page) == 0 {
			break
		}
		rows = append(rows, page...)

		lastClose, err := page[len(page)-1].CloseTimeMS()
		if err != nil {
			return nil, c.fetchError(err, "unusable close time in kline row", req, cursor)
		}
		if endMS > 0 && lastClose >= endMS {
			break
		}
		if len(page) < c.pageLimit {
			break
		}

		cursor = lastClose + 1
		if err := c.waitBetweenPages(ctx); err != nil {
			return nil, c.fetchError(err, "inter-page delay interrupted", req, cursor)
		}
	}

	c.logger.Debug("fetch complete",
		"symbol", req.Symbol,
		"interval", req.Interval,
		"rows", len(rows),
		"pages", pages)

	return rows, nil
}

// fetchPage issues one klines request at the given cursor and decodes
// the response body.
func (c *Client) fetchPage(ctx context.Context, symbol, interval string, cursor, endMS int64) ([]RawKline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("startTime", strconv.FormatInt(cursor, 10))
	if endMS > 0 {
		params.Set("endTime", strconv.FormatInt(endMS, 10))
	}

	body, err := c.doRequest(ctx, c.baseURL+c.klinesPath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var page []RawKline
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode klines response: %w", err)
	}
	return page, nil
}

// doRequest performs one GET, retrying per the configured policy. With
// max_attempts of 1 (the default) a failure is returned immediately.
func (c *Client) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(payload, errorBodyLimit))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				// Client errors are not retryable.
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		body = payload
		return nil
	}

	if err := backoff.Retry(operation, c.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	if c.maxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryDelay
	policy.MaxInterval = maxRetryDelay
	policy.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx)
}

// waitBetweenPages blocks for the configured inter-page delay.
func (c *Client) waitBetweenPages(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.pageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) fetchError(err error, message string, req FetchRequest, cursor int64) error {
	return apperrors.NewUpstreamFetch(fmt.Errorf("%s: %w", message, err), req.Symbol, req.Interval).
		With("cursor_ms", cursor)
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
