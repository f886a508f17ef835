package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/overview"
	"github.com/mkoziy/portfolio/internal/repositories"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
	"github.com/mkoziy/portfolio/internal/syncer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSyncer struct {
	calls   int
	symbols []string
	err     error
}

func (s *stubSyncer) Run(_ context.Context, symbols []string, _ syncer.Options) (*syncer.Result, error) {
	s.calls++
	s.symbols = symbols
	if s.err != nil {
		return nil, s.err
	}
	return &syncer.Result{
		BatchID:  "batch-1",
		Symbols:  []string{"AAPL"},
		Results:  map[string]syncer.Counts{"AAPL": {Income: 5, Cash: 5, Balance: 5}},
		SyncedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

type stubQuotes struct {
	res fmp.QuoteResult
	err error
	got []string
}

func (s *stubQuotes) Quotes(_ context.Context, symbols []string) (fmp.QuoteResult, error) {
	s.got = symbols
	return s.res, s.err
}

type stubOverview struct {
	err error
}

func (s *stubOverview) Financial(context.Context) (*overview.Financial, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &overview.Financial{BaseSymbol: "AAPL", CompareSymbol: "MSFT"}, nil
}

func (s *stubOverview) Portfolio(context.Context) (*overview.Portfolio, error) {
	return &overview.Portfolio{QuoteError: "missing_api_key"}, s.err
}

func (s *stubOverview) CompanyStatements(_ context.Context, symbol string, limit int) (*overview.CompanyStatements, error) {
	if symbol != "AAPL" {
		return nil, repositories.ErrCompanyNotFound
	}
	return &overview.CompanyStatements{Company: &models.Company{Symbol: symbol}}, nil
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.Database{
		Path: filepath.Join(t.TempDir(), "portfolio.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func tokenHeader(token string) http.Header {
	h := http.Header{}
	h.Set(SyncTokenHeader, token)
	return h
}

func TestAdminSyncRequiresToken(t *testing.T) {
	runner := &stubSyncer{}
	srv := New(config.Server{}, zerolog.Nop(), &SyncHandler{Token: "s3cret", Syncer: runner})

	for _, header := range []http.Header{nil, tokenHeader("wrong"), tokenHeader("s3cret ")} {
		code, body := do(t, srv.Handler(), http.MethodPost, "/api/admin/sync", header)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, map[string]any{"error": "Unauthorized"}, body)
	}
	assert.Zero(t, runner.calls)
}

func TestAdminSyncUnconfiguredToken(t *testing.T) {
	runner := &stubSyncer{}
	srv := New(config.Server{}, zerolog.Nop(), &SyncHandler{Syncer: runner})

	code, _ := do(t, srv.Handler(), http.MethodPost, "/api/admin/sync", tokenHeader(""))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Zero(t, runner.calls)
}

func TestAdminSyncSuccess(t *testing.T) {
	runner := &stubSyncer{}
	srv := New(config.Server{}, zerolog.Nop(), &SyncHandler{Token: "s3cret", Syncer: runner})

	code, body := do(t, srv.Handler(), http.MethodPost, "/api/admin/sync", tokenHeader("s3cret"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "batch-1", body["batchId"])
	assert.Equal(t, []any{"AAPL"}, body["symbols"])
	assert.Equal(t, "2025-01-02T03:04:05Z", body["syncedAt"])
	assert.Equal(t, map[string]any{"income": 5.0, "cash": 5.0, "balance": 5.0},
		body["results"].(map[string]any)["AAPL"])
	assert.Nil(t, runner.symbols)

	_, _ = do(t, srv.Handler(), http.MethodPost, "/api/admin/sync?symbols=aapl,%20msft,", tokenHeader("s3cret"))
	assert.Equal(t, []string{"aapl", "msft"}, runner.symbols)
}

func TestAdminSyncFailure(t *testing.T) {
	runner := &stubSyncer{err: errors.New("database is locked")}
	srv := New(config.Server{}, zerolog.Nop(), &SyncHandler{Token: "s3cret", Syncer: runner})

	code, body := do(t, srv.Handler(), http.MethodPost, "/api/admin/sync", tokenHeader("s3cret"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{"ok": false, "error": "Sync failed"}, body)
}

func TestMarketQuotes(t *testing.T) {
	price := 190.5
	quotes := &stubQuotes{res: fmp.QuoteResult{Quotes: map[string]fmp.Quote{
		"AAPL": {Symbol: "AAPL", Price: &price},
	}}}
	srv := New(config.Server{}, zerolog.Nop(), &MarketHandler{Quotes: quotes})

	code, body := do(t, srv.Handler(), http.MethodGet, "/api/market/quotes?symbols=aapl,%20,msft", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"aapl", "msft"}, quotes.got)
	assert.Equal(t, []any{"aapl", "msft"}, body["symbols"])
	aapl := body["quotes"].(map[string]any)["AAPL"].(map[string]any)
	assert.Equal(t, 190.5, aapl["price"])
}

func TestMarketQuotesUpstreamError(t *testing.T) {
	quotes := &stubQuotes{err: errors.New("connection refused")}
	srv := New(config.Server{}, zerolog.Nop(), &MarketHandler{Quotes: quotes})

	code, body := do(t, srv.Handler(), http.MethodGet, "/api/market/quotes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["symbols"])
	assert.Equal(t, map[string]any{}, body["quotes"])
}

func TestDashboardRoutes(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, repositories.InsertSyncLog(ctx, db, &models.SyncLog{
		BatchID:  "b1",
		SyncedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Symbols:  "AAPL",
		Status:   models.SyncSuccess,
	}))
	require.NoError(t, repositories.InsertSyncLogSymbols(ctx, db, []*models.SyncLogSymbol{
		{BatchID: "b1", Symbol: "AAPL", Status: models.SyncSuccess, IncomeRows: 5},
	}))

	srv := New(config.Server{}, zerolog.Nop(),
		&HealthHandler{DB: db},
		&DashboardHandler{Overview: &stubOverview{}, DB: db},
	)
	h := srv.Handler()

	code, body := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = do(t, h, http.MethodGet, "/api/financial", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AAPL", body["baseSymbol"])

	code, body = do(t, h, http.MethodGet, "/api/portfolio", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "missing_api_key", body["quoteError"])

	code, _ = do(t, h, http.MethodGet, "/api/companies/AAPL/statements", nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = do(t, h, http.MethodGet, "/api/companies/ZZZZ/statements", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "company not found", body["error"])

	code, body = do(t, h, http.MethodGet, "/api/sync/logs?limit=3", nil)
	assert.Equal(t, http.StatusOK, code)
	logs := body["logs"].([]any)
	require.Len(t, logs, 1)
	assert.Equal(t, "b1", logs[0].(map[string]any)["batch_id"])

	code, body = do(t, h, http.MethodGet, "/api/sync/logs/b1", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["symbols"], 1)

	code, _ = do(t, h, http.MethodGet, "/api/sync/logs/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDashboardError(t *testing.T) {
	srv := New(config.Server{}, zerolog.Nop(), &DashboardHandler{Overview: &stubOverview{err: errors.New("boom")}})

	code, body := do(t, srv.Handler(), http.MethodGet, "/api/financial", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal error", body["error"])
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv := New(config.Server{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, zerolog.Nop(), &HealthHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSplitSymbols(t *testing.T) {
	assert.Nil(t, splitSymbols(""))
	assert.Equal(t, []string{"A", "b"}, splitSymbols(" A ,,b,"))
}
