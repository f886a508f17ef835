// Package syncer pulls statements for a list of symbols from FMP into the
// local database and records an audit trail for every run.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/config"
	"github.com/mkoziy/portfolio/internal/database"
	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/repositories"
	"github.com/mkoziy/portfolio/internal/sources/fmp"
)

// Options tune a single run.
type Options struct {
	// Strict turns a refused upstream request into a run error.
	Strict bool
}

// Counts is the number of rows stored per statement type for one symbol.
type Counts struct {
	Income  int `json:"income"`
	Cash    int `json:"cash"`
	Balance int `json:"balance"`
}

// Result describes a successful run.
type Result struct {
	BatchID  string                  `json:"batchId"`
	Symbols  []string                `json:"symbols"`
	Results  map[string]Counts       `json:"results"`
	Outcomes map[string]fmp.Outcomes `json:"outcomes"`
	SyncedAt time.Time               `json:"syncedAt"`
}

// StatementFetcher is the part of fmp.Fetcher the service needs.
type StatementFetcher interface {
	FetchStatements(ctx context.Context, symbol string, opts fmp.StatementOptions) (*fmp.Statements, error)
}

// Service runs syncs. It holds no database handle between runs.
type Service struct {
	db       config.Database
	opts     fmp.StatementOptions
	fetcher  StatementFetcher
	defaults []string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires a Service. defaults is used when Run gets no symbols.
func NewService(cfg config.Config, fetcher StatementFetcher, defaults []string, logger zerolog.Logger) *Service {
	return &Service{
		db:       cfg.Database,
		opts:     fmp.StatementOptions{Limit: cfg.Sync.Limit, Period: cfg.Sync.Period},
		fetcher:  fetcher,
		defaults: defaults,
		logger:   logger.With().Str("component", "syncer").Logger(),
		now:      time.Now,
	}
}

// Run syncs symbols one after another. The first unexpected error stops
// the run; rows already committed for earlier symbols stay. Every run
// leaves exactly one sync_logs row.
func (s *Service) Run(ctx context.Context, symbols []string, opts Options) (*Result, error) {
	// The audit row must be written even when ctx is already done.
	db, err := database.Open(context.WithoutCancel(ctx), s.db)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.Error().Err(err).Msg("close database")
		}
	}()

	if len(symbols) == 0 {
		symbols = s.defaults
	}
	upper := fmp.UniqueSymbols(symbols)

	res := &Result{
		BatchID:  uuid.NewString(),
		Symbols:  upper,
		Results:  make(map[string]Counts, len(upper)),
		Outcomes: make(map[string]fmp.Outcomes, len(upper)),
		SyncedAt: s.now().UTC(),
	}
	logger := s.logger.With().Str("batch_id", res.BatchID).Logger()
	logger.Info().Strs("symbols", upper).Msg("sync started")

	var audit []*models.SyncLogSymbol
	runErr := func() error {
		for _, symbol := range upper {
			entry, err := s.syncSymbol(ctx, db, symbol, opts, res, logger)
			if entry != nil {
				entry.BatchID = res.BatchID
				audit = append(audit, entry)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}()

	requested := strings.Join(symbols, ",")
	if err := s.writeAudit(context.WithoutCancel(ctx), db, res, requested, audit, runErr); err != nil {
		logger.Error().Err(err).Msg("write sync log")
		if runErr == nil {
			return nil, fmt.Errorf("write sync log: %w", err)
		}
	}

	if runErr != nil {
		logger.Error().Err(runErr).Msg("sync failed")
		return nil, runErr
	}
	logger.Info().Int("symbols", len(upper)).Msg("sync finished")
	return res, nil
}

func (s *Service) syncSymbol(ctx context.Context, db *bun.DB, symbol string, opts Options, res *Result, logger zerolog.Logger) (*models.SyncLogSymbol, error) {
	entry := &models.SyncLogSymbol{Symbol: symbol}

	if err := ctx.Err(); err != nil {
		return fail(entry, err)
	}

	company, err := repositories.UpsertCompany(ctx, db, symbol, nil)
	if err != nil {
		return fail(entry, fmt.Errorf("upsert company %s: %w", symbol, err))
	}
	if company == nil || company.ID == 0 {
		logger.Warn().Str("symbol", symbol).Msg("no company id, skipping")
		entry.Status = models.SyncSkipped
		return entry, nil
	}

	stmts, err := s.fetcher.FetchStatements(ctx, symbol, s.opts)
	if err != nil {
		return fail(entry, err)
	}

	reason, refused := stmts.Outcomes.FirstFailure()
	if refused && opts.Strict {
		return fail(entry, fmt.Errorf("fetch statements for %s: %s", symbol, reason))
	}

	if _, err := repositories.SaveStatements(ctx, db, symbol, nil, stmts.Batch); err != nil {
		return fail(entry, fmt.Errorf("save statements for %s: %w", symbol, err))
	}

	counts := Counts{
		Income:  len(stmts.Batch.Income),
		Cash:    len(stmts.Batch.CashFlow),
		Balance: len(stmts.Batch.Balance),
	}
	res.Results[symbol] = counts
	res.Outcomes[symbol] = stmts.Outcomes

	entry.IncomeRows, entry.CashRows, entry.BalanceRows = counts.Income, counts.Cash, counts.Balance
	entry.Status = models.SyncSuccess
	if refused {
		entry.Status = models.SyncPartial
		entry.Message = &reason
		logger.Warn().Str("symbol", symbol).Str("reason", reason).Msg("upstream refused part of the statements")
	}

	logger.Info().
		Str("symbol", symbol).
		Int("income", counts.Income).
		Int("cash", counts.Cash).
		Int("balance", counts.Balance).
		Msg("symbol synced")
	return entry, nil
}

func (s *Service) writeAudit(ctx context.Context, db *bun.DB, res *Result, requested string, audit []*models.SyncLogSymbol, runErr error) error {
	entry := &models.SyncLog{
		BatchID:  res.BatchID,
		SyncedAt: res.SyncedAt,
		Symbols:  requested,
		Status:   models.SyncSuccess,
	}
	if runErr != nil {
		msg := runErr.Error()
		entry.Status = models.SyncError
		entry.Message = &msg
	}

	if err := repositories.InsertSyncLog(ctx, db, entry); err != nil {
		return err
	}
	// The batch row stands on its own; per-symbol detail is best effort.
	if err := repositories.InsertSyncLogSymbols(ctx, db, audit); err != nil {
		s.logger.Error().Err(err).Str("batch_id", res.BatchID).Msg("write per-symbol sync log")
	}
	return nil
}

func fail(entry *models.SyncLogSymbol, err error) (*models.SyncLogSymbol, error) {
	msg := err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "canceled"
	}
	entry.Status = models.SyncError
	entry.Message = &msg
	return entry, err
}
