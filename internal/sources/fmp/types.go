package fmp

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mkoziy/portfolio/internal/financials"
)

// IncomeStatementRecord is one element of the income-statement response.
type IncomeStatementRecord struct {
	Date            string     `json:"date"`
	Symbol          string     `json:"symbol"`
	CalendarYear    flexString `json:"calendarYear"`
	FiscalYear      flexString `json:"fiscalYear"`
	Period          string     `json:"period"`
	Revenue         *float64   `json:"revenue"`
	GrossProfit     *float64   `json:"grossProfit"`
	OperatingIncome *float64   `json:"operatingIncome"`
	NetIncome       *float64   `json:"netIncome"`
}

// CashFlowStatementRecord is one element of the cash-flow-statement response.
type CashFlowStatementRecord struct {
	Date               string     `json:"date"`
	Symbol             string     `json:"symbol"`
	CalendarYear       flexString `json:"calendarYear"`
	FiscalYear         flexString `json:"fiscalYear"`
	Period             string     `json:"period"`
	OperatingCashFlow  *float64   `json:"operatingCashFlow"`
	CapitalExpenditure *float64   `json:"capitalExpenditure"`
	FreeCashFlow       *float64   `json:"freeCashFlow"`
}

// BalanceSheetRecord is one element of the balance-sheet-statement response.
type BalanceSheetRecord struct {
	Date                    string     `json:"date"`
	Symbol                  string     `json:"symbol"`
	CalendarYear            flexString `json:"calendarYear"`
	FiscalYear              flexString `json:"fiscalYear"`
	Period                  string     `json:"period"`
	TotalAssets             *float64   `json:"totalAssets"`
	TotalLiabilities        *float64   `json:"totalLiabilities"`
	CashAndCashEquivalents  *float64   `json:"cashAndCashEquivalents"`
	TotalCurrentAssets      *float64   `json:"totalCurrentAssets"`
	TotalCurrentLiabilities *float64   `json:"totalCurrentLiabilities"`
	TotalDebt               *float64   `json:"totalDebt"`
	TotalStockholdersEquity *float64   `json:"totalStockholdersEquity"`
}

// Quote is one element of the quote response.
type Quote struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Change            *float64 `json:"change,omitempty"`
	ChangesPercentage *Percent `json:"changesPercentage,omitempty"`
	MarketCap         *float64 `json:"marketCap,omitempty"`
}

// Percent accepts either a JSON number or a string such as "(+1.23%)".
// Unparseable strings decode to an invalid Percent.
type Percent struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	*p = Percent{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Value, p.Valid = financials.ParsePercent(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	p.Value, p.Valid = v, true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, p.Value, 'f', -1, 64), nil
}

// Float returns the value as a pointer, nil when invalid.
func (p *Percent) Float() *float64 {
	if p == nil || !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}

// flexString holds a year field that upstream sends as a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}
