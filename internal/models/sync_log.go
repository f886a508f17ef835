package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SyncStatus tags the outcome of a sync run or of one symbol within it.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
	SyncSkipped SyncStatus = "skipped"
	// SyncPartial marks a symbol for which at least one statement type
	// was refused upstream while the others were stored.
	SyncPartial SyncStatus = "partial"
)

// SyncLog is the append-only audit row written once per sync run.
type SyncLog struct {
	bun.BaseModel `bun:"table:sync_logs,alias:sl"`

	ID       int64      `bun:"id,pk,autoincrement" json:"id"`
	BatchID  string     `bun:"batch_id" json:"batch_id"`
	SyncedAt time.Time  `bun:"synced_at,notnull" json:"synced_at"`
	Symbols  string     `bun:"symbols,notnull" json:"symbols"`
	Status   SyncStatus `bun:"status,notnull" json:"status"`
	Message  *string    `bun:"message" json:"message,omitempty"`
}

// Succeeded reports whether the run completed without error.
func (l *SyncLog) Succeeded() bool {
	return l.Status == SyncSuccess
}

// SyncLogSymbol records what one sync run did for one symbol.
type SyncLogSymbol struct {
	bun.BaseModel `bun:"table:sync_log_symbols,alias:sls"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	BatchID     string     `bun:"batch_id,notnull" json:"batch_id"`
	Symbol      string     `bun:"symbol,notnull" json:"symbol"`
	Status      SyncStatus `bun:"status,notnull" json:"status"`
	IncomeRows  int        `bun:"income_rows,notnull" json:"income_rows"`
	CashRows    int        `bun:"cash_rows,notnull" json:"cash_rows"`
	BalanceRows int        `bun:"balance_rows,notnull" json:"balance_rows"`
	Message     *string    `bun:"message" json:"message,omitempty"`
	CreatedAt   string     `bun:"created_at,nullzero" json:"created_at"`
}
