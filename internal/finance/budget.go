package finance

import (
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetStatus string

const (
	BudgetOnTrack    BudgetStatus = "on-track"
	BudgetWarning    BudgetStatus = "warning"
	BudgetOverBudget BudgetStatus = "over-budget"
)

const warningThreshold = 90

// StatusFor classifies a spent percentage.
func StatusFor(percentage int) BudgetStatus {
	switch {
	case percentage >= 100:
		return BudgetOverBudget
	case percentage >= warningThreshold:
		return BudgetWarning
	default:
		return BudgetOnTrack
	}
}

// Progress is budgeted versus spent for one window.
type Progress struct {
	Budgeted   decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
}

// ComputeProgress applies the remaining and percentage rules.
func ComputeProgress(budgeted, spent decimal.Decimal) Progress {
	return Progress{
		Budgeted:   budgeted,
		Spent:      spent,
		Remaining:  Remaining(budgeted, spent),
		Percentage: Percentage(spent, budgeted),
	}
}

// Status classifies p.
func (p Progress) Status() BudgetStatus {
	return StatusFor(p.Percentage)
}

// CountsAsSpend reports whether tx counts against a budget in window w.
func CountsAsSpend(tx *models.Transaction, w Window) bool {
	return tx.IsActive &&
		tx.Type == models.TransactionExpense &&
		tx.CategoryID != nil &&
		w.Contains(tx.Date)
}

// SpentByCategory totals spend per category in window w.
func SpentByCategory(txs []models.Transaction, w Window) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for i := range txs {
		if CountsAsSpend(&txs[i], w) {
			out[*txs[i].CategoryID] = out[*txs[i].CategoryID].Add(txs[i].Amount)
		}
	}
	return out
}

// Summarize totals every budget amount and the spend of the distinct set of
// budgeted categories. Budgets without a category only add to the budgeted
// total.
func Summarize(budgets []models.Budget, spent map[uuid.UUID]decimal.Decimal) Progress {
	total := decimal.Zero
	seen := make(map[uuid.UUID]bool)
	spentTotal := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.Amount)
		if b.CategoryID == nil || seen[*b.CategoryID] {
			continue
		}
		seen[*b.CategoryID] = true
		spentTotal = spentTotal.Add(spent[*b.CategoryID])
	}
	return ComputeProgress(total, spentTotal)
}
