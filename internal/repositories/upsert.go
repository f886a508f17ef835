package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// naturalKey describes an upsert against a table whose rows are identified
// by a business key instead of the surrogate id.
type naturalKey struct {
	key     []string
	columns []string
}

func (k naturalKey) insertColumns() []string {
	cols := make([]string, 0, len(k.key)+len(k.columns))
	cols = append(cols, k.key...)
	return append(cols, k.columns...)
}

// upsert inserts model or, when the key already exists, overwrites every
// data column with the incoming value and bumps updated_at.
func upsert(ctx context.Context, db bun.IDB, model any, k naturalKey) error {
	q := db.NewInsert().
		Model(model).
		Column(k.insertColumns()...).
		On(fmt.Sprintf("CONFLICT (%s) DO UPDATE", strings.Join(k.key, ", ")))

	for _, col := range k.columns {
		q = q.Set(fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	q = q.Set("updated_at = datetime('now')")

	_, err := q.Exec(ctx)
	return err
}

var statementKey = []string{"symbol", "date", "period"}

var (
	incomeKey = naturalKey{
		key: statementKey,
		columns: []string{
			"company_id", "calendar_year",
			"revenue", "gross_profit", "operating_income", "net_income",
		},
	}
	cashFlowKey = naturalKey{
		key: statementKey,
		columns: []string{
			"company_id", "calendar_year",
			"operating_cash_flow", "capital_expenditure", "free_cash_flow",
		},
	}
	balanceKey = naturalKey{
		key: statementKey,
		columns: []string{
			"company_id", "calendar_year",
			"total_assets", "total_liabilities", "cash_and_cash_equivalents",
			"total_current_assets", "total_current_liabilities",
			"total_debt", "total_stockholders_equity",
		},
	}
)
