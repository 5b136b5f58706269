package core

import "testing"

func TestAggregate(t *testing.T) {
	ledger := []FinancialRecord{
		{Date: "2024-01-05", Type: Income, Amount: 500000},
		{Date: "2024-01-10", Type: Expense, Amount: 120000},
	}

	got := Aggregate(ledger)
	if got.TotalIncome != 500000 {
		t.Errorf("TotalIncome = %v, want 500000", got.TotalIncome)
	}
	if got.TotalExpenses != 120000 {
		t.Errorf("TotalExpenses = %v, want 120000", got.TotalExpenses)
	}
	if got.Balance != 380000 {
		t.Errorf("Balance = %v, want 380000", got.Balance)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	if got.TotalIncome != 0 || got.TotalExpenses != 0 || got.Balance != 0 {
		t.Errorf("empty ledger should aggregate to zeroes, got %+v", got)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	a := []FinancialRecord{
		{Type: Income, Amount: 100.25},
		{Type: Expense, Amount: 40.75},
		{Type: Income, Amount: 3.5},
		{Type: Expense, Amount: 12},
	}
	b := []FinancialRecord{a[3], a[1], a[2], a[0]}

	ta, tb := Aggregate(a), Aggregate(b)
	if ta != tb {
		t.Errorf("aggregate changed under reordering: %+v vs %+v", ta, tb)
	}
}

func TestAggregate_FractionalCents(t *testing.T) {
	ledger := []FinancialRecord{
		{Type: Expense, Amount: 0.335},
		{Type: Income, Amount: 1.005},
	}
	got := Aggregate(ledger)
	if got.TotalExpenses != 0.335 {
		t.Errorf("fractional cents must pass through, got %v", got.TotalExpenses)
	}
	if got.Balance != 1.005-0.335 {
		t.Errorf("Balance = %v", got.Balance)
	}
}
