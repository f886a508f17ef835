package fmp

import (
	"errors"
	"strings"

	"github.com/mkoziy/portfolio/internal/models"
)

// ErrMissingDate is returned by the mappers for records without a date,
// which cannot be keyed.
var ErrMissingDate = errors.New("statement record has no date")

func mapKey(symbol, date string, calendarYear, fiscalYear flexString, period string) (models.StatementKey, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return models.StatementKey{}, ErrMissingDate
	}

	key := models.StatementKey{
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		Date:   date,
		Period: strings.TrimSpace(period),
	}
	if key.Period == "" {
		key.Period = models.DefaultPeriod
	}

	year := string(calendarYear)
	if year == "" {
		year = string(fiscalYear)
	}
	if year != "" {
		key.CalendarYear = &year
	}
	return key, nil
}

// MapIncomeStatement converts a wire record into a storable row.
func MapIncomeStatement(symbol string, rec IncomeStatementRecord) (*models.IncomeStatement, error) {
	key, err := mapKey(symbol, rec.Date, rec.CalendarYear, rec.FiscalYear, rec.Period)
	if err != nil {
		return nil, err
	}
	return &models.IncomeStatement{
		StatementKey:    key,
		Revenue:         rec.Revenue,
		GrossProfit:     rec.GrossProfit,
		OperatingIncome: rec.OperatingIncome,
		NetIncome:       rec.NetIncome,
	}, nil
}

// MapCashFlowStatement converts a wire record into a storable row.
func MapCashFlowStatement(symbol string, rec CashFlowStatementRecord) (*models.CashFlowStatement, error) {
	key, err := mapKey(symbol, rec.Date, rec.CalendarYear, rec.FiscalYear, rec.Period)
	if err != nil {
		return nil, err
	}
	return &models.CashFlowStatement{
		StatementKey:       key,
		OperatingCashFlow:  rec.OperatingCashFlow,
		CapitalExpenditure: rec.CapitalExpenditure,
		FreeCashFlow:       rec.FreeCashFlow,
	}, nil
}

// MapBalanceSheet converts a wire record into a storable row.
func MapBalanceSheet(symbol string, rec BalanceSheetRecord) (*models.BalanceSheet, error) {
	key, err := mapKey(symbol, rec.Date, rec.CalendarYear, rec.FiscalYear, rec.Period)
	if err != nil {
		return nil, err
	}
	return &models.BalanceSheet{
		StatementKey:            key,
		TotalAssets:             rec.TotalAssets,
		TotalLiabilities:        rec.TotalLiabilities,
		CashAndCashEquivalents:  rec.CashAndCashEquivalents,
		TotalCurrentAssets:      rec.TotalCurrentAssets,
		TotalCurrentLiabilities: rec.TotalCurrentLiabilities,
		TotalDebt:               rec.TotalDebt,
		TotalStockholdersEquity: rec.TotalStockholdersEquity,
	}, nil
}
