package overview

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mkoziy/portfolio/internal/financials"
	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/repositories"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

const (
	seriesLength = 5
	recentLogs   = 5
)

// HistoryItem is one headline card.
type HistoryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// KPIRow is one line of the KPI table.
type KPIRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Trend string `json:"trend"`
}

// Financial is the financial overview of the base symbol, with the
// compare symbol's revenue alongside.
type Financial struct {
	History               []HistoryItem     `json:"history"`
	KPIRows               []KPIRow          `json:"kpiRows"`
	Sparkline             []int             `json:"sparkline"`
	CompareSparkline      []int             `json:"compareSparkline"`
	Labels                []string          `json:"labels"`
	BaseSymbol            string            `json:"baseSymbol"`
	CompareSymbol         string            `json:"compareSymbol"`
	OperatingMarginSeries []float64         `json:"operatingMarginSeries"`
	FreeCashFlowSeries    []float64         `json:"freeCashFlowSeries"`
	LastUpdated           *string           `json:"lastUpdated"`
	LastUpdatedLabel      string            `json:"lastUpdatedLabel"`
	LastSync              *models.SyncLog   `json:"lastSync"`
	LastSyncLabel         string            `json:"lastSyncLabel"`
	SyncLogs              []*models.SyncLog `json:"syncLogs"`
}

// Financial builds the financial overview.
func (s *Service) Financial(ctx context.Context) (*Financial, error) {
	var (
		baseIncome    []*models.IncomeStatement
		compareIncome []*models.IncomeStatement
		baseCash      []*models.CashFlowStatement
		baseBalance   []*models.BalanceSheet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		baseIncome, err = loadStatements(gctx, s, s.base, "income", repositories.GetIncomeStatements, incomeAPI, fmp.MapIncomeStatement)
		return err
	})
	g.Go(func() (err error) {
		compareIncome, err = loadStatements(gctx, s, s.compare, "income", repositories.GetIncomeStatements, incomeAPI, fmp.MapIncomeStatement)
		return err
	})
	g.Go(func() (err error) {
		baseCash, err = loadStatements(gctx, s, s.base, "cash", repositories.GetCashFlowStatements, cashFlowAPI, fmp.MapCashFlowStatement)
		return err
	})
	g.Go(func() (err error) {
		baseBalance, err = loadStatements(gctx, s, s.base, "balance", repositories.GetBalanceSheets, balanceAPI, fmp.MapBalanceSheet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load statements: %w", err)
	}

	out := &Financial{
		BaseSymbol:    s.base,
		CompareSymbol: s.compare,
	}
	out.History, out.KPIRows = summarize(baseIncome, baseCash, baseBalance)

	baseRevenue := revenueSeries(baseIncome)
	out.Labels = baseRevenue.Labels
	out.Sparkline = financials.Sparkline(baseRevenue.Values)
	out.CompareSparkline = financials.Sparkline(revenueSeries(compareIncome).Values)

	out.OperatingMarginSeries = []float64{}
	for _, row := range oldestFirst(baseIncome, seriesLength) {
		if m := financials.Margin(row.OperatingIncome, row.Revenue); m != nil && *m != 0 {
			out.OperatingMarginSeries = append(out.OperatingMarginSeries, *m)
		}
	}
	out.FreeCashFlowSeries = []float64{}
	for _, row := range oldestFirst(baseCash, seriesLength) {
		if row.FreeCashFlow != nil && *row.FreeCashFlow != 0 {
			out.FreeCashFlowSeries = append(out.FreeCashFlowSeries, *row.FreeCashFlow)
		}
	}

	if err := s.syncStatus(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) syncStatus(ctx context.Context, out *Financial) error {
	var err error
	if out.LastUpdated, err = repositories.GetLatestIngestion(ctx, s.db); err != nil {
		return fmt.Errorf("latest ingestion: %w", err)
	}
	if out.LastSync, err = repositories.GetLatestSyncLog(ctx, s.db); err != nil {
		return fmt.Errorf("latest sync log: %w", err)
	}
	if out.SyncLogs, err = repositories.GetSyncLogs(ctx, s.db, recentLogs); err != nil {
		return fmt.Errorf("sync logs: %w", err)
	}

	out.LastUpdatedLabel = "Last sync: pending"
	if out.LastUpdated != nil {
		out.LastUpdatedLabel = "Last sync: " + financials.FormatDateTime(*out.LastUpdated)
	}
	out.LastSyncLabel = "Last job: none"
	if out.LastSync != nil {
		out.LastSyncLabel = fmt.Sprintf("Last job: %s (%s)", financials.FormatTime(out.LastSync.SyncedAt), out.LastSync.Status)
	}
	return nil
}

func summarize(income []*models.IncomeStatement, cash []*models.CashFlowStatement, balance []*models.BalanceSheet) ([]HistoryItem, []KPIRow) {
	latestIncome, previousIncome := nth(income, 0), nth(income, 1)
	latestCash := nth(cash, 0)
	latestBalance, previousBalance := nth(balance, 0), nth(balance, 1)

	history := []HistoryItem{
		{Label: "Revenue (TTM)", Value: financials.FormatCompactCurrency(latestIncome.Revenue)},
		{Label: "Operating Margin", Value: financials.FormatPercent(financials.Margin(latestIncome.OperatingIncome, latestIncome.Revenue))},
		{Label: "Free Cash Flow", Value: financials.FormatCompactCurrency(latestCash.FreeCashFlow)},
	}

	grossMargin := financials.Margin(latestIncome.GrossProfit, latestIncome.Revenue)
	previousGrossMargin := financials.Margin(previousIncome.GrossProfit, previousIncome.Revenue)

	rows := []KPIRow{
		{
			Name:  "Revenue",
			Value: financials.FormatCompactCurrency(latestIncome.Revenue),
			Trend: financials.FormatPercent(financials.PercentChange(latestIncome.Revenue, previousIncome.Revenue)),
		},
		{
			Name:  "Gross Margin",
			Value: financials.FormatPercent(grossMargin),
			Trend: financials.FormatPercent(financials.MarginChange(grossMargin, previousGrossMargin)),
		},
		{
			Name:  "Operating Income",
			Value: financials.FormatCompactCurrency(latestIncome.OperatingIncome),
			Trend: financials.FormatPercent(financials.PercentChange(latestIncome.OperatingIncome, previousIncome.OperatingIncome)),
		},
		{
			Name:  "Total Assets",
			Value: financials.FormatCompactCurrency(latestBalance.TotalAssets),
			Trend: financials.FormatPercent(financials.PercentChange(latestBalance.TotalAssets, previousBalance.TotalAssets)),
		},
		{
			Name:  "Net Cash",
			Value: financials.FormatCompactCurrency(financials.NetCash(latestBalance.CashAndCashEquivalents, latestBalance.TotalDebt)),
			Trend: financials.Placeholder,
		},
		{
			Name:  "Debt / Equity",
			Value: financials.FormatRatio(financials.Ratio(latestBalance.TotalDebt, latestBalance.TotalStockholdersEquity)),
			Trend: financials.Placeholder,
		},
		{
			Name:  "Current Ratio",
			Value: financials.FormatRatio(financials.Ratio(latestBalance.TotalCurrentAssets, latestBalance.TotalCurrentLiabilities)),
			Trend: financials.Placeholder,
		},
	}
	return history, rows
}

// revenueSeries charts the newest five revenues, oldest first, skipping
// periods without revenue.
func revenueSeries(income []*models.IncomeStatement) financials.Series {
	var points []financials.Point
	for _, row := range oldestFirst(income, seriesLength) {
		if row.Revenue == nil {
			continue
		}
		points = append(points, financials.Point{Date: row.Date, Value: *row.Revenue})
	}
	return financials.BuildSeries(points)
}
