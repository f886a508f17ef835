package models

import "github.com/uptrace/bun"

// DefaultPeriod is stored when the upstream record carries no period.
const DefaultPeriod = "annual"

// StatementKey is the natural key shared by every statement table.
type StatementKey struct {
	CompanyID    int64   `bun:"company_id,notnull" json:"company_id"`
	Symbol       string  `bun:"symbol,notnull" json:"symbol"`
	Date         string  `bun:"date,notnull" json:"date"`
	CalendarYear *string `bun:"calendar_year" json:"calendar_year,omitempty"`
	Period       string  `bun:"period" json:"period"`
}

// Key returns the embedded key, letting the store treat all three
// statement types alike.
func (k *StatementKey) Key() *StatementKey {
	return k
}

// IncomeStatement is one reporting period of an income statement.
type IncomeStatement struct {
	bun.BaseModel `bun:"table:income_statements,alias:inc"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	StatementKey
	Revenue         *float64 `bun:"revenue" json:"revenue"`
	GrossProfit     *float64 `bun:"gross_profit" json:"gross_profit"`
	OperatingIncome *float64 `bun:"operating_income" json:"operating_income"`
	NetIncome       *float64 `bun:"net_income" json:"net_income"`
	CreatedAt       string   `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt       string   `bun:"updated_at,nullzero" json:"updated_at"`

	Company *Company `bun:"rel:belongs-to,join:company_id=id" json:"-"`
}

// CashFlowStatement is one reporting period of a cash-flow statement.
type CashFlowStatement struct {
	bun.BaseModel `bun:"table:cash_flow_statements,alias:cf"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	StatementKey
	OperatingCashFlow  *float64 `bun:"operating_cash_flow" json:"operating_cash_flow"`
	CapitalExpenditure *float64 `bun:"capital_expenditure" json:"capital_expenditure"`
	FreeCashFlow       *float64 `bun:"free_cash_flow" json:"free_cash_flow"`
	CreatedAt          string   `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt          string   `bun:"updated_at,nullzero" json:"updated_at"`

	Company *Company `bun:"rel:belongs-to,join:company_id=id" json:"-"`
}

// BalanceSheet is one reporting period of a balance sheet.
type BalanceSheet struct {
	bun.BaseModel `bun:"table:balance_sheets,alias:bs"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	StatementKey
	TotalAssets             *float64 `bun:"total_assets" json:"total_assets"`
	TotalLiabilities        *float64 `bun:"total_liabilities" json:"total_liabilities"`
	CashAndCashEquivalents  *float64 `bun:"cash_and_cash_equivalents" json:"cash_and_cash_equivalents"`
	TotalCurrentAssets      *float64 `bun:"total_current_assets" json:"total_current_assets"`
	TotalCurrentLiabilities *float64 `bun:"total_current_liabilities" json:"total_current_liabilities"`
	TotalDebt               *float64 `bun:"total_debt" json:"total_debt"`
	TotalStockholdersEquity *float64 `bun:"total_stockholders_equity" json:"total_stockholders_equity"`
	CreatedAt               string   `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt               string   `bun:"updated_at,nullzero" json:"updated_at"`

	Company *Company `bun:"rel:belongs-to,join:company_id=id" json:"-"`
}

// Statement is implemented by the three statement row types.
type Statement interface {
	Key() *StatementKey
}

// StatementBatch carries every row fetched for one symbol in one sync.
type StatementBatch struct {
	Income   []*IncomeStatement
	CashFlow []*CashFlowStatement
	Balance  []*BalanceSheet
}

// Len is the total number of rows in the batch.
func (b StatementBatch) Len() int {
	return len(b.Income) + len(b.CashFlow) + len(b.Balance)
}
