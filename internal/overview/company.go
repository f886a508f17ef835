package overview

import (
	"context"
	"fmt"

	"github.com/mkoziy/portfolio/internal/models"
	"github.com/mkoziy/portfolio/internal/repositories"
)

// CompanyStatements is the stored statement history of one company.
type CompanyStatements struct {
	Company  *models.Company             `json:"company"`
	Income   []*models.IncomeStatement   `json:"income"`
	CashFlow []*models.CashFlowStatement `json:"cashFlow"`
	Balance  []*models.BalanceSheet      `json:"balance"`
}

// CompanyStatements reads the newest limit rows of each statement type.
// It returns repositories.ErrCompanyNotFound for unknown symbols.
func (s *Service) CompanyStatements(ctx context.Context, symbol string, limit int) (*CompanyStatements, error) {
	if limit <= 0 {
		limit = repositories.DefaultStatementLimit
	}
	company, err := repositories.GetCompany(ctx, s.db, symbol)
	if err != nil {
		return nil, err
	}

	out := &CompanyStatements{Company: company}
	if out.Income, err = repositories.GetIncomeStatements(ctx, s.db, company.Symbol, limit); err != nil {
		return nil, fmt.Errorf("income statements: %w", err)
	}
	if out.CashFlow, err = repositories.GetCashFlowStatements(ctx, s.db, company.Symbol, limit); err != nil {
		return nil, fmt.Errorf("cash flow statements: %w", err)
	}
	if out.Balance, err = repositories.GetBalanceSheets(ctx, s.db, company.Symbol, limit); err != nil {
		return nil, fmt.Errorf("balance sheets: %w", err)
	}
	return out, nil
}
