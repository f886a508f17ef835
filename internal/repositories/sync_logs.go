package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/models"
)

// DefaultSyncLogLimit bounds GetSyncLogs when no limit is given.
const DefaultSyncLogLimit = 5

// InsertSyncLog appends one run-level audit row.
func InsertSyncLog(ctx context.Context, db bun.IDB, entry *models.SyncLog) error {
	_, err := db.NewInsert().
		Model(entry).
		Column("batch_id", "synced_at", "symbols", "status", "message").
		Exec(ctx)
	return err
}

// InsertSyncLogSymbols appends the per-symbol audit rows of one run.
func InsertSyncLogSymbols(ctx context.Context, db bun.IDB, entries []*models.SyncLogSymbol) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&entries).
		Column("batch_id", "symbol", "status", "income_rows", "cash_rows", "balance_rows", "message").
		Exec(ctx)
	return err
}

// GetLatestSyncLog returns the newest run, or nil when nothing has run yet.
func GetLatestSyncLog(ctx context.Context, db bun.IDB) (*models.SyncLog, error) {
	entry := new(models.SyncLog)
	err := db.NewSelect().
		Model(entry).
		OrderExpr("synced_at DESC, id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetSyncLogs returns the newest runs first.
func GetSyncLogs(ctx context.Context, db bun.IDB, limit int) ([]*models.SyncLog, error) {
	if limit <= 0 {
		limit = DefaultSyncLogLimit
	}
	var entries []*models.SyncLog
	err := db.NewSelect().
		Model(&entries).
		OrderExpr("synced_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}

// GetSyncLogSymbols returns the per-symbol rows of one run in the order
// they were processed.
func GetSyncLogSymbols(ctx context.Context, db bun.IDB, batchID string) ([]*models.SyncLogSymbol, error) {
	var entries []*models.SyncLogSymbol
	err := db.NewSelect().
		Model(&entries).
		Where("batch_id = ?", batchID).
		OrderExpr("id ASC").
		Scan(ctx)
	return entries, err
}
