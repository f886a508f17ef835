package models

import "github.com/uptrace/bun"

// Company is a tracked ticker. Rows are created on first sync and never
// deleted by the sync job.
type Company struct {
	bun.BaseModel `bun:"table:companies,alias:co"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	Symbol    string  `bun:"symbol,notnull,unique" json:"symbol"`
	Name      *string `bun:"name" json:"name,omitempty"`
	CreatedAt string  `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt string  `bun:"updated_at,nullzero" json:"updated_at"`
}

// DisplayName returns the company name, or the symbol when no name is known.
func (c *Company) DisplayName() string {
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return c.Symbol
}
