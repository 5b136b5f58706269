package core

// Totals holds the derived aggregates of a ledger view.
type Totals struct {
	TotalIncome   float64
	TotalExpenses float64
	Balance       float64
}

// Aggregate computes income, expense and balance totals. It is a pure
// function of the ledger contents: order of records does not matter and an
// empty ledger yields all zeroes.
func Aggregate(ledger []FinancialRecord) Totals {
	var t Totals
	for _, r := range ledger {
		if r.Type == Income {
			t.TotalIncome += r.Amount
		} else {
			t.TotalExpenses += r.Amount
		}
	}
	t.Balance = t.TotalIncome - t.TotalExpenses
	return t
}
