package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/models"
)

// DefaultStatementLimit is used by the statement readers when limit <= 0.
const DefaultStatementLimit = 5

// UpsertIncomeStatement writes one income statement keyed by (symbol, date, period).
func UpsertIncomeStatement(ctx context.Context, db bun.IDB, row *models.IncomeStatement) error {
	prepareKey(row)
	return upsert(ctx, db, row, incomeKey)
}

// UpsertCashFlowStatement writes one cash-flow statement keyed by (symbol, date, period).
func UpsertCashFlowStatement(ctx context.Context, db bun.IDB, row *models.CashFlowStatement) error {
	prepareKey(row)
	return upsert(ctx, db, row, cashFlowKey)
}

// UpsertBalanceSheet writes one balance sheet keyed by (symbol, date, period).
func UpsertBalanceSheet(ctx context.Context, db bun.IDB, row *models.BalanceSheet) error {
	prepareKey(row)
	return upsert(ctx, db, row, balanceKey)
}

// SaveStatements upserts the company and every row of batch in a single
// transaction. Either all rows land or none do.
func SaveStatements(ctx context.Context, db *bun.DB, symbol string, name *string, batch models.StatementBatch) (*models.Company, error) {
	var company *models.Company
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		company, err = UpsertCompany(ctx, tx, symbol, name)
		if err != nil {
			return err
		}

		for _, row := range batch.Income {
			row.CompanyID, row.Symbol = company.ID, company.Symbol
			if err := UpsertIncomeStatement(ctx, tx, row); err != nil {
				return err
			}
		}
		for _, row := range batch.CashFlow {
			row.CompanyID, row.Symbol = company.ID, company.Symbol
			if err := UpsertCashFlowStatement(ctx, tx, row); err != nil {
				return err
			}
		}
		for _, row := range batch.Balance {
			row.CompanyID, row.Symbol = company.ID, company.Symbol
			if err := UpsertBalanceSheet(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetIncomeStatements returns the newest limit income statements for symbol.
func GetIncomeStatements(ctx context.Context, db bun.IDB, symbol string, limit int) ([]*models.IncomeStatement, error) {
	var rows []*models.IncomeStatement
	err := selectStatements(db, &rows, symbol, limit).Scan(ctx)
	return rows, err
}

// GetCashFlowStatements returns the newest limit cash-flow statements for symbol.
func GetCashFlowStatements(ctx context.Context, db bun.IDB, symbol string, limit int) ([]*models.CashFlowStatement, error) {
	var rows []*models.CashFlowStatement
	err := selectStatements(db, &rows, symbol, limit).Scan(ctx)
	return rows, err
}

// GetBalanceSheets returns the newest limit balance sheets for symbol.
func GetBalanceSheets(ctx context.Context, db bun.IDB, symbol string, limit int) ([]*models.BalanceSheet, error) {
	var rows []*models.BalanceSheet
	err := selectStatements(db, &rows, symbol, limit).Scan(ctx)
	return rows, err
}

// GetLatestIngestion returns the most recent updated_at across income
// statements, or nil for an empty database.
func GetLatestIngestion(ctx context.Context, db bun.IDB) (*string, error) {
	var latest sql.NullString
	err := db.NewSelect().
		Model((*models.IncomeStatement)(nil)).
		ColumnExpr("MAX(updated_at)").
		Scan(ctx, &latest)
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.String, nil
}

func selectStatements(db bun.IDB, dest any, symbol string, limit int) *bun.SelectQuery {
	if limit <= 0 {
		limit = DefaultStatementLimit
	}
	return db.NewSelect().
		Model(dest).
		Where("symbol = ?", normalizeSymbol(symbol)).
		OrderExpr("date DESC").
		Limit(limit)
}

func prepareKey(row models.Statement) {
	key := row.Key()
	key.Symbol = normalizeSymbol(key.Symbol)
	if key.Period == "" {
		key.Period = models.DefaultPeriod
	}
}
