package overview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/portfolio"
	"github.com/mkoziy/portfolio/internal/ratelimit"
	"github.com/mkoziy/portfolio/internal/repositories"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

func ptr[T any](v T) *T { return &v }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.Database{
		Path: filepath.Join(t.TempDir(), "portfolio.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeFMP serves canned bodies per path and records requested symbols.
type fakeFMP struct {
	mu       sync.Mutex
	bodies   map[string]string
	status   int
	requests []string
}

func (f *fakeFMP) client(t *testing.T) *fmp.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.Path+"?"+r.URL.Query().Get("symbol"))
		f.mu.Unlock()
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		body, ok := f.bodies[r.URL.Path+"?"+r.URL.Query().Get("symbol")]
		if !ok {
			body = "[]"
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return fmp.NewClient(config.MarketData{
		APIKey:        "key",
		BaseURL:       srv.URL,
		Timeout:       5 * time.Second,
		QuoteCacheTTL: time.Minute,
	}, ratelimit.Config{RequestsPerSec: 1000, Burst: 1000}, zerolog.Nop())
}

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Portfolio.BaseSymbol = "AAPL"
	cfg.Portfolio.CompareSymbol = "MSFT"
	cfg.Sync.Period = "annual"
	return cfg
}

func seedApple(t *testing.T, db *bun.DB) {
	t.Helper()
	key := func(date string) models.StatementKey {
		return models.StatementKey{Date: date, CalendarYear: ptr(date[:4]), Period: "FY"}
	}
	batch := models.StatementBatch{
		Income: []*models.IncomeStatement{
			{StatementKey: key("2023-09-30"), Revenue: ptr(380e9), GrossProfit: ptr(167.2e9), OperatingIncome: ptr(110e9)},
			{StatementKey: key("2024-09-28"), Revenue: ptr(400e9), GrossProfit: ptr(180e9), OperatingIncome: ptr(120e9)},
		},
		CashFlow: []*models.CashFlowStatement{
			{StatementKey: key("2023-09-30"), FreeCashFlow: ptr(90e9)},
			{StatementKey: key("2024-09-28"), FreeCashFlow: ptr(100e9)},
		},
		Balance: []*models.BalanceSheet{
			{
				StatementKey:            key("2024-09-28"),
				TotalAssets:             ptr(350e9),
				CashAndCashEquivalents:  ptr(60e9),
				TotalDebt:               ptr(100e9),
				TotalStockholdersEquity: ptr(50e9),
				TotalCurrentAssets:      ptr(150e9),
				TotalCurrentLiabilities: ptr(100e9),
			},
		},
	}
	_, err := repositories.SaveStatements(context.Background(), db, "AAPL", ptr("Apple Inc."), batch)
	require.NoError(t, err)
}

func TestFinancialPrefersStoredRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedApple(t, db)

	api := &fakeFMP{bodies: map[string]string{
		"/income-statement?MSFT": `[
			{"date":"2023-06-30","calendarYear":"2023","period":"FY","revenue":211000000000},
			{"date":"2024-06-30","calendarYear":"2024","period":"FY","revenue":245000000000}
		]`,
	}}
	svc := NewService(testConfig(), db, api.client(t), portfolio.Default(), zerolog.Nop())

	got, err := svc.Financial(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/income-statement?MSFT"}, api.requests)

	assert.Equal(t, []HistoryItem{
		{Label: "Revenue (TTM)", Value: "$400B"},
		{Label: "Operating Margin", Value: "+30.0%"},
		{Label: "Free Cash Flow", Value: "$100B"},
	}, got.History)

	assert.Equal(t, []KPIRow{
		{Name: "Revenue", Value: "$400B", Trend: "+5.3%"},
		{Name: "Gross Margin", Value: "+45.0%", Trend: "+1.0%"},
		{Name: "Operating Income", Value: "$120B", Trend: "+9.1%"},
		{Name: "Total Assets", Value: "$350B", Trend: "—"},
		{Name: "Net Cash", Value: "$-40B", Trend: "—"},
		{Name: "Debt / Equity", Value: "2.00x", Trend: "—"},
		{Name: "Current Ratio", Value: "1.50x", Trend: "—"},
	}, got.KPIRows)

	assert.Equal(t, []string{"2023", "2024"}, got.Labels)
	assert.Equal(t, []int{12, 42}, got.Sparkline)
	assert.Equal(t, []int{12, 42}, got.CompareSparkline)
	assert.Equal(t, "AAPL", got.BaseSymbol)
	assert.Equal(t, "MSFT", got.CompareSymbol)

	require.Len(t, got.OperatingMarginSeries, 2)
	assert.InDelta(t, 28.947, got.OperatingMarginSeries[0], 0.001)
	assert.InDelta(t, 30.0, got.OperatingMarginSeries[1], 0.001)
	assert.Equal(t, []float64{90e9, 100e9}, got.FreeCashFlowSeries)

	require.NotNil(t, got.LastUpdated)
	assert.Contains(t, got.LastUpdatedLabel, "Last sync: ")
	assert.NotEqual(t, "Last sync: pending", got.LastUpdatedLabel)
	assert.Nil(t, got.LastSync)
	assert.Equal(t, "Last job: none", got.LastSyncLabel)
	assert.Empty(t, got.SyncLogs)
}

func TestFinancialEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(testConfig(), db, nil, portfolio.Default(), zerolog.Nop())

	got, err := svc.Financial(context.Background())
	require.NoError(t, err)

	for _, item := range got.History {
		assert.Equal(t, "—", item.Value, item.Label)
	}
	for _, row := range got.KPIRows {
		assert.Equal(t, "—", row.Value, row.Name)
		assert.Equal(t, "—", row.Trend, row.Name)
	}
	assert.Empty(t, got.Sparkline)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.OperatingMarginSeries)
	assert.Empty(t, got.FreeCashFlowSeries)
	assert.Nil(t, got.LastUpdated)
	assert.Equal(t, "Last sync: pending", got.LastUpdatedLabel)
	assert.Equal(t, "Last job: none", got.LastSyncLabel)
}

func TestFinancialFallbackRefused(t *testing.T) {
	db := newTestDB(t)
	api := &fakeFMP{status: http.StatusForbidden}
	svc := NewService(testConfig(), db, api.client(t), portfolio.Default(), zerolog.Nop())

	got, err := svc.Financial(context.Background())
	require.NoError(t, err)
	assert.Len(t, api.requests, 4)
	assert.Equal(t, "—", got.History[0].Value)
}

func TestFinancialLastJob(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, repositories.InsertSyncLog(ctx, db, &models.SyncLog{
		BatchID:  "b1",
		SyncedAt: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC),
		Symbols:  "AAPL",
		Status:   models.SyncSuccess,
	}))

	svc := NewService(testConfig(), db, nil, portfolio.Default(), zerolog.Nop())
	got, err := svc.Financial(ctx)
	require.NoError(t, err)

	require.NotNil(t, got.LastSync)
	assert.Equal(t, "Last job: Jan 2, 2025, 3:04 PM (success)", got.LastSyncLabel)
	assert.Len(t, got.SyncLogs, 1)
}

func TestPortfolioOverlaysQuotes(t *testing.T) {
	db := newTestDB(t)
	api := &fakeFMP{bodies: map[string]string{
		"/quote?AAPL,MSFT,NVDA,TSLA": `[{"symbol":"AAPL","price":190.5,"change":1.5,"changesPercentage":"0.79"}]`,
	}}
	svc := NewService(testConfig(), db, api.client(t), portfolio.Default(), zerolog.Nop())

	got, err := svc.Portfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Holdings, 4)
	assert.Empty(t, got.QuoteError)

	assert.Equal(t, "$190.50", got.Holdings[0].Price)
	assert.Equal(t, "+0.79% today", got.Holdings[0].DayChange)
	assert.Equal(t, "$412.08", got.Holdings[1].Price)
	assert.Equal(t, "+1.4% today", got.Holdings[1].DayChange)

	// The configured holdings are not modified.
	assert.Equal(t, "$186.22", svc.holdings[0].Price)
}

func TestPortfolioQuoteFailure(t *testing.T) {
	db := newTestDB(t)
	api := &fakeFMP{status: http.StatusInternalServerError}
	svc := NewService(testConfig(), db, api.client(t), portfolio.Default(), zerolog.Nop())

	got, err := svc.Portfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fmp_error_500", got.QuoteError)
	assert.Equal(t, portfolio.Default(), got.Holdings)
}

func TestCompanyStatements(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedApple(t, db)
	svc := NewService(testConfig(), db, nil, portfolio.Default(), zerolog.Nop())

	_, err := svc.CompanyStatements(ctx, "ZZZZ", 0)
	assert.ErrorIs(t, err, repositories.ErrCompanyNotFound)

	got, err := svc.CompanyStatements(ctx, "aapl", 0)
	require.NoError(t, err)
	require.NotNil(t, got.Company.Name)
	assert.Equal(t, "Apple Inc.", *got.Company.Name)
	assert.Len(t, got.Income, 2)
	assert.Len(t, got.CashFlow, 2)
	assert.Len(t, got.Balance, 1)
	assert.Equal(t, "2024-09-28", got.Income[0].Date)
}
