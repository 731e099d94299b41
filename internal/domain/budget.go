package domain

// BudgetBreakdown is the itemized monthly estimate produced by the
// calculator. Recomputation always replaces the whole struct.
type BudgetBreakdown struct {
	Transport     float64 `json:"transport"`
	Gas           float64 `json:"gas"`
	Groceries     float64 `json:"groceries"`
	FixedCosts    float64 `json:"fixedCosts"`
	PetCost       float64 `json:"petCost"`
	LoanCost      float64 `json:"loanCost"`
	LifestyleCost float64 `json:"lifestyleCost"`
	Savings       float64 `json:"savings"`
	Total         float64 `json:"total"`
}

// VariableCosts is the market-sensitive subset of the budget, recomputed by
// the drift scheduler for cheap day-to-day comparison.
type VariableCosts struct {
	Gas       float64 `json:"gas"`
	Groceries float64 `json:"groceries"`
	PetCost   float64 `json:"petCost"`
	Total     float64 `json:"total"`
}

// Variable extracts the drift-comparison baseline from a stored breakdown.
func (b *BudgetBreakdown) Variable() VariableCosts {
	if b == nil {
		return VariableCosts{}
	}

	return VariableCosts{
		Gas:       b.Gas,
		Groceries: b.Groceries,
		PetCost:   b.PetCost,
		Total:     b.Gas + b.Groceries + b.PetCost,
	}
}
