package models

import "testing"

func TestCompanyDisplayName(t *testing.T) {
	c := &Company{Symbol: "AAPL"}
	if got := c.DisplayName(); got != "AAPL" {
		t.Fatalf("expected symbol fallback, got %q", got)
	}

	empty := ""
	c.Name = &empty
	if got := c.DisplayName(); got != "AAPL" {
		t.Fatalf("expected symbol fallback for empty name, got %q", got)
	}

	name := "Apple Inc."
	c.Name = &name
	if got := c.DisplayName(); got != name {
		t.Fatalf("expected %q, got %q", name, got)
	}
}

func TestStatementKeyIsShared(t *testing.T) {
	rows := []Statement{
		&IncomeStatement{StatementKey: StatementKey{Symbol: "AAPL"}},
		&CashFlowStatement{StatementKey: StatementKey{Symbol: "AAPL"}},
		&BalanceSheet{StatementKey: StatementKey{Symbol: "AAPL"}},
	}
	for _, row := range rows {
		row.Key().Period = DefaultPeriod
	}
	if rows[2].(*BalanceSheet).Period != DefaultPeriod {
		t.Fatalf("expected Key to expose the embedded key by reference")
	}
}

func TestStatementBatchLen(t *testing.T) {
	b := StatementBatch{
		Income:   make([]*IncomeStatement, 5),
		CashFlow: make([]*CashFlowStatement, 4),
	}
	if b.Len() != 9 {
		t.Fatalf("expected 9 rows, got %d", b.Len())
	}
}

func TestSyncLogSucceeded(t *testing.T) {
	if !(&SyncLog{Status: SyncSuccess}).Succeeded() {
		t.Fatalf("expected success")
	}
	if (&SyncLog{Status: SyncError}).Succeeded() {
		t.Fatalf("expected failure")
	}
}
