package fmp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/ratelimit"
)

const (
	pathIncomeStatement = "income-statement"
	pathCashFlow        = "cash-flow-statement"
	pathBalanceSheet    = "balance-sheet-statement"
	pathQuote           = "quote"
)

// StatementOptions selects how many periods of which kind to fetch.
type StatementOptions struct {
	Limit  int
	Period string
}

func (o StatementOptions) params(symbol string) map[string]string {
	if o.Limit <= 0 {
		o.Limit = 5
	}
	if o.Period == "" {
		o.Period = "annual"
	}
	return map[string]string{
		"symbol": strings.ToUpper(strings.TrimSpace(symbol)),
		"limit":  strconv.Itoa(o.Limit),
		"period": o.Period,
	}
}

// Client talks to the Financial Modeling Prep stable API.
type Client struct {
	http    *resty.Client
	limiter ratelimit.Limiter
	apiKey  string
	quotes  *quoteCache
	logger  zerolog.Logger
}

// New builds a Client, reading limiter settings from cfg.RateLimitFile.
func New(cfg config.MarketData, logger zerolog.Logger) (*Client, error) {
	limits, err := ratelimit.LoadFile(cfg.RateLimitFile, ratelimit.SourceFMP)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, limits, logger), nil
}

// NewClient builds a Client with explicit limiter settings. Requests that
// come back 429 are retried up to limits.MaxRetries times with the
// limiter's backoff.
func NewClient(cfg config.MarketData, limits ratelimit.Config, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "fmp").Logger()
	limiter := ratelimit.NewLimiter(limits)

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger}).
		SetRetryCount(limits.MaxRetries).
		SetRetryMaxWaitTime(limits.MaxBackoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			return limiter.RetryAfter(r.Request.Attempt), nil
		})

	return &Client{
		http:    httpClient,
		limiter: limiter,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		quotes:  newQuoteCache(cfg.QuoteCacheTTL),
		logger:  logger,
	}
}

// HasAPIKey reports whether requests can be made at all.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// IncomeStatements fetches income statements for symbol, newest first.
func (c *Client) IncomeStatements(ctx context.Context, symbol string, opts StatementOptions) (Result[IncomeStatementRecord], error) {
	return fetch[IncomeStatementRecord](ctx, c, pathIncomeStatement, opts.params(symbol))
}

// CashFlowStatements fetches cash-flow statements for symbol, newest first.
func (c *Client) CashFlowStatements(ctx context.Context, symbol string, opts StatementOptions) (Result[CashFlowStatementRecord], error) {
	return fetch[CashFlowStatementRecord](ctx, c, pathCashFlow, opts.params(symbol))
}

// BalanceSheets fetches balance sheets for symbol, newest first.
func (c *Client) BalanceSheets(ctx context.Context, symbol string, opts StatementOptions) (Result[BalanceSheetRecord], error) {
	return fetch[BalanceSheetRecord](ctx, c, pathBalanceSheet, opts.params(symbol))
}

// fetch performs one GET. A missing key or a non-2xx status is a failed
// Result; anything that prevents reading a response is an error.
func fetch[T any](ctx context.Context, c *Client, path string, params map[string]string) (Result[T], error) {
	if !c.HasAPIKey() {
		return failed[T](ReasonMissingAPIKey), nil
	}

	body, status, err := c.get(ctx, path, params)
	if err != nil {
		return Result[T]{}, err
	}
	if status != 0 {
		return failed[T](StatusReason(status)), nil
	}

	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return Result[T]{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return ok(rows), nil
}

// get returns the body of a 2xx response, or the status code of any other.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, int, error) {
	if wait := c.limiter.Reserve(); wait > 0 {
		c.logger.Debug().
			Str("path", path).
			Dur("wait", wait).
			Msg("rate limited, waiting")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", c.apiKey).
		Get("/" + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", path, err)
	}

	if !resp.IsSuccess() {
		c.logger.Warn().
			Str("path", path).
			Str("symbol", params["symbol"]).
			Int("status", resp.StatusCode()).
			Msg("upstream request failed")
		return nil, resp.StatusCode(), nil
	}

	c.logger.Debug().
		Str("path", path).
		Str("symbol", params["symbol"]).
		Dur("elapsed", resp.Time()).
		Msg("upstream request done")
	return resp.Body(), 0, nil
}

// restyLogger routes resty's own messages through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
