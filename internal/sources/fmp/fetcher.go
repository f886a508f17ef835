package fmp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mkoziy/portfolio/internal/models"
)

// Outcomes records the per-type fetch result for one symbol.
type Outcomes struct {
	Income   Outcome `json:"income"`
	CashFlow Outcome `json:"cash"`
	Balance  Outcome `json:"balance"`
}

// FirstFailure returns the reason of the first failed statement type.
func (o Outcomes) FirstFailure() (string, bool) {
	for _, out := range []Outcome{o.Income, o.CashFlow, o.Balance} {
		if out.Status == StatusFailed {
			return out.Reason, true
		}
	}
	return "", false
}

// Statements is everything fetched for one symbol.
type Statements struct {
	Symbol   string
	Batch    models.StatementBatch
	Outcomes Outcomes
}

// Fetcher pulls the three statement types for a symbol concurrently.
type Fetcher struct {
	client *Client
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(client *Client, logger zerolog.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger.With().Str("component", "fmp_fetcher").Logger()}
}

// FetchStatements issues the three statement requests in parallel and
// waits for all of them. A failed Result contributes zero rows; the first
// transport error cancels the others and is returned.
func (f *Fetcher) FetchStatements(ctx context.Context, symbol string, opts StatementOptions) (*Statements, error) {
	var (
		income  Result[IncomeStatementRecord]
		cash    Result[CashFlowStatementRecord]
		balance Result[BalanceSheetRecord]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = f.client.IncomeStatements(gctx, symbol, opts)
		return err
	})
	g.Go(func() error {
		var err error
		cash, err = f.client.CashFlowStatements(gctx, symbol, opts)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = f.client.BalanceSheets(gctx, symbol, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch statements for %s: %w", symbol, err)
	}

	out := &Statements{
		Symbol: symbol,
		Outcomes: Outcomes{
			Income:   income.Outcome(),
			CashFlow: cash.Outcome(),
			Balance:  balance.Outcome(),
		},
	}

	for _, rec := range income.Rows {
		row, err := MapIncomeStatement(symbol, rec)
		if err != nil {
			f.skip(symbol, pathIncomeStatement, err)
			continue
		}
		out.Batch.Income = append(out.Batch.Income, row)
	}
	for _, rec := range cash.Rows {
		row, err := MapCashFlowStatement(symbol, rec)
		if err != nil {
			f.skip(symbol, pathCashFlow, err)
			continue
		}
		out.Batch.CashFlow = append(out.Batch.CashFlow, row)
	}
	for _, rec := range balance.Rows {
		row, err := MapBalanceSheet(symbol, rec)
		if err != nil {
			f.skip(symbol, pathBalanceSheet, err)
			continue
		}
		out.Batch.Balance = append(out.Batch.Balance, row)
	}

	out.Outcomes.Income.Rows = len(out.Batch.Income)
	out.Outcomes.CashFlow.Rows = len(out.Batch.CashFlow)
	out.Outcomes.Balance.Rows = len(out.Batch.Balance)

	return out, nil
}

func (f *Fetcher) skip(symbol, path string, err error) {
	f.logger.Warn().Err(err).Str("symbol", symbol).Str("path", path).Msg("skipping unmappable record")
}
