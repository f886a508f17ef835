package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/mkoziy/portfolio/internal/models"
)

// ErrCompanyNotFound is returned when no company row matches a symbol.
var ErrCompanyNotFound = errors.New("company not found")

// UpsertCompany ensures a company row exists for symbol and returns it.
// A nil or empty name never overwrites a stored one.
func UpsertCompany(ctx context.Context, db bun.IDB, symbol string, name *string) (*models.Company, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		name = nil
	}
	company := &models.Company{Symbol: normalizeSymbol(symbol), Name: name}

	_, err := db.NewInsert().
		Model(company).
		Column("symbol", "name").
		On("CONFLICT (symbol) DO UPDATE").
		Set("name = COALESCE(EXCLUDED.name, name)").
		Set("updated_at = datetime('now')").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return GetCompany(ctx, db, company.Symbol)
}

// GetCompany fetches a company by symbol.
func GetCompany(ctx context.Context, db bun.IDB, symbol string) (*models.Company, error) {
	company := new(models.Company)
	err := db.NewSelect().
		Model(company).
		Where("symbol = ?", normalizeSymbol(symbol)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	return company, err
}

// ListCompanies returns every tracked company ordered by symbol.
func ListCompanies(ctx context.Context, db bun.IDB) ([]*models.Company, error) {
	var companies []*models.Company
	err := db.NewSelect().
		Model(&companies).
		OrderExpr("symbol ASC").
		Scan(ctx)
	return companies, err
}

// DeleteCompany removes a company. Its statements go with it through the
// foreign key cascade.
func DeleteCompany(ctx context.Context, db bun.IDB, symbol string) error {
	res, err := db.NewDelete().
		Model((*models.Company)(nil)).
		Where("symbol = ?", normalizeSymbol(symbol)).
		Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
