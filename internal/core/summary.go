package core

// BudgetStatus is the budget and spend of one project as reported by the backend.
type BudgetStatus struct {
	ProjectName string
	Budget      Money
	Spent       Money
}

// Remaining returns budget minus spent; negative when over budget.
func (b BudgetStatus) Remaining() Money {
	return b.Budget.Sub(b.Spent)
}

// SumCosts totals the cost of a set of expenses.
func SumCosts(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Cost)
	}
	return total
}
