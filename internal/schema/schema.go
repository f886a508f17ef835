package schema

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Column is a nullable column that may be missing from databases created
// by older builds.
type Column struct {
	Name string
	Type string
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		name TEXT,
		created_at TEXT DEFAULT (datetime('now')),
		updated_at TEXT DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS income_statements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		calendar_year TEXT,
		period TEXT,
		revenue REAL,
		gross_profit REAL,
		operating_income REAL,
		net_income REAL,
		created_at TEXT DEFAULT (datetime('now')),
		updated_at TEXT DEFAULT (datetime('now')),
		UNIQUE(symbol, date, period),
		FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS cash_flow_statements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		calendar_year TEXT,
		period TEXT,
		operating_cash_flow REAL,
		capital_expenditure REAL,
		free_cash_flow REAL,
		created_at TEXT DEFAULT (datetime('now')),
		updated_at TEXT DEFAULT (datetime('now')),
		UNIQUE(symbol, date, period),
		FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS balance_sheets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		calendar_year TEXT,
		period TEXT,
		total_assets REAL,
		total_liabilities REAL,
		cash_and_cash_equivalents REAL,
		total_current_assets REAL,
		total_current_liabilities REAL,
		total_debt REAL,
		total_stockholders_equity REAL,
		created_at TEXT DEFAULT (datetime('now')),
		updated_at TEXT DEFAULT (datetime('now')),
		UNIQUE(symbol, date, period),
		FOREIGN KEY(company_id) REFERENCES companies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS sync_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT,
		synced_at TEXT NOT NULL,
		symbols TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sync_log_symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		status TEXT NOT NULL,
		income_rows INTEGER NOT NULL DEFAULT 0,
		cash_rows INTEGER NOT NULL DEFAULT 0,
		balance_rows INTEGER NOT NULL DEFAULT 0,
		message TEXT,
		created_at TEXT DEFAULT (datetime('now')),
		UNIQUE(batch_id, symbol)
	)`,
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_income_symbol_date ON income_statements(symbol, date)",
	"CREATE INDEX IF NOT EXISTS idx_cash_symbol_date ON cash_flow_statements(symbol, date)",
	"CREATE INDEX IF NOT EXISTS idx_balance_symbol_date ON balance_sheets(symbol, date)",
	"CREATE INDEX IF NOT EXISTS idx_sync_logs_synced_at ON sync_logs(synced_at)",
	"CREATE INDEX IF NOT EXISTS idx_sync_logs_batch ON sync_logs(batch_id)",
	"CREATE INDEX IF NOT EXISTS idx_sync_log_symbols_batch ON sync_log_symbols(batch_id)",
}

// Columns added to tables after their first release. Only ever appended to.
var additions = map[string][]Column{
	"balance_sheets": {
		{Name: "total_current_assets", Type: "REAL"},
		{Name: "total_current_liabilities", Type: "REAL"},
		{Name: "total_debt", Type: "REAL"},
		{Name: "total_stockholders_equity", Type: "REAL"},
	},
	"sync_logs": {
		{Name: "batch_id", Type: "TEXT"},
	},
}

// EnsureSchema creates missing tables and indexes and adds missing nullable
// columns. It never drops or renames anything, so it runs on every open.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}

	for _, table := range []string{"balance_sheets", "sync_logs"} {
		if err := AddMissingColumns(ctx, db, table, additions[table]); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}

// AddMissingColumns appends every column in cols that table does not have yet.
func AddMissingColumns(ctx context.Context, db bun.IDB, table string, cols []Column) error {
	existing, err := ExistingColumns(ctx, db, table)
	if err != nil {
		return err
	}

	for _, col := range cols {
		if existing[col.Name] {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.Name, col.Type)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// ExistingColumns returns the set of column names of table.
func ExistingColumns(ctx context.Context, db bun.IDB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
