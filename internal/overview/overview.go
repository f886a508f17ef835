// Package overview assembles the read-side views served to the dashboard:
// the financial overview, the portfolio with live quotes and per-company
// statement history.
package overview

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/portfolio"
	"github.com/mkoziy/portfolio/internal/repositories"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

// Service reads from the local store and falls back to FMP when the store
// has nothing for a dataset. client may be nil, which disables the fallback
// and live quotes.
type Service struct {
	db       *bun.DB
	client   *fmp.Client
	holdings portfolio.Holdings
	base     string
	compare  string
	opts     fmp.StatementOptions
	logger   zerolog.Logger
}

func NewService(cfg config.Config, db *bun.DB, client *fmp.Client, holdings portfolio.Holdings, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		client:   client,
		holdings: holdings,
		base:     cfg.Portfolio.BaseSymbol,
		compare:  cfg.Portfolio.CompareSymbol,
		opts:     fmp.StatementOptions{Limit: repositories.DefaultStatementLimit, Period: cfg.Sync.Period},
		logger:   logger.With().Str("component", "overview").Logger(),
	}
}

type apiReader[R any] func(ctx context.Context, symbol string, opts fmp.StatementOptions) (fmp.Result[R], error)

// loadStatements returns up to the statement limit rows for symbol, newest
// first. Stored rows win; the API is asked only when none are stored.
// Upstream failures yield no rows rather than an error.
func loadStatements[T models.Statement, R any](
	ctx context.Context,
	s *Service,
	symbol, path string,
	fromDB func(context.Context, bun.IDB, string, int) ([]T, error),
	fromAPI func(*fmp.Client) apiReader[R],
	mapRow func(string, R) (T, error),
) ([]T, error) {
	rows, err := fromDB(ctx, s.db, symbol, s.opts.Limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && s.client != nil {
		rows = fetchStatements(ctx, s, symbol, path, fromAPI(s.client), mapRow)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key().Date > rows[j].Key().Date
	})
	return rows, nil
}

func fetchStatements[T models.Statement, R any](ctx context.Context, s *Service, symbol, path string, read apiReader[R], mapRow func(string, R) (T, error)) []T {
	logger := s.logger.With().Str("symbol", symbol).Str("dataset", path).Logger()

	res, err := read(ctx, symbol, s.opts)
	if err != nil {
		logger.Warn().Err(err).Msg("statement fallback failed")
		return nil
	}
	if res.Failed() {
		logger.Debug().Str("reason", res.Reason).Msg("statement fallback refused")
		return nil
	}

	rows := make([]T, 0, len(res.Rows))
	for _, rec := range res.Rows {
		row, err := mapRow(symbol, rec)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func incomeAPI(c *fmp.Client) apiReader[fmp.IncomeStatementRecord] { return c.IncomeStatements }

func cashFlowAPI(c *fmp.Client) apiReader[fmp.CashFlowStatementRecord] { return c.CashFlowStatements }

func balanceAPI(c *fmp.Client) apiReader[fmp.BalanceSheetRecord] { return c.BalanceSheets }

// nth returns rows[i], or a zero row whose fields are all nil.
func nth[T any](rows []*T, i int) *T {
	if i < len(rows) {
		return rows[i]
	}
	return new(T)
}

// oldestFirst returns the newest n rows in chronological order.
func oldestFirst[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}
