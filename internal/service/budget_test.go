package service

import (
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"
)

func TestBudget_WindowIsolation(t *testing.T) {
	f := newFixture(t)
	food := f.category("Food")
	b, err := f.svc.Budgets.Create(f.ctx, f.user.ID, BudgetInput{Name: "Food", CategoryID: ref(food.ID), Amount: dec("200")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("50"), CategoryID: ref(food.ID), Date: day(2024, time.March, 1), CurrencyID: ref(f.usd.ID)})
	f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("70"), CategoryID: ref(food.ID), Date: day(2024, time.March, 31), CurrencyID: ref(f.usd.ID)})
	f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("500"), CategoryID: ref(food.ID), Date: day(2024, time.April, 1), CurrencyID: ref(f.usd.ID)})
	f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("500"), CategoryID: ref(food.ID), Date: day(2024, time.February, 29), CurrencyID: ref(f.usd.ID)})
	f.create(TransactionInput{Type: models.TransactionIncome, Amount: dec("999"), CategoryID: ref(food.ID), Date: day(2024, time.March, 10), CurrencyID: ref(f.usd.ID)})

	p, err := f.svc.Budgets.Progress(f.ctx, f.user.ID, b.ID, finance.Window{Year: 2024, Month: time.March})
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if !p.SpentAmount.Equal(dec("120")) || !p.RemainingAmount.Equal(dec("80")) || p.ProgressPercentage != 60 {
		t.Errorf("progress = spent %s remaining %s pct %d, want 120/80/60", p.SpentAmount, p.RemainingAmount, p.ProgressPercentage)
	}
	if p.Status != finance.BudgetOnTrack || p.Symbol != "$" {
		t.Errorf("status = %s currency = %+v", p.Status, p.CurrencyDisplay)
	}
}

func TestBudget_ZeroAmountAndNoCategory(t *testing.T) {
	f := newFixture(t)
	food := f.category("Food")
	zero, err := f.svc.Budgets.Create(f.ctx, f.user.ID, BudgetInput{Name: "Zero", CategoryID: ref(food.ID)})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	loose, err := f.svc.Budgets.Create(f.ctx, f.user.ID, BudgetInput{Name: "Loose", Amount: dec("100")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("30"), CategoryID: ref(food.ID), Date: day(2024, time.May, 2), CurrencyID: ref(f.usd.ID)})
	w := finance.Window{Year: 2024, Month: time.May}

	p, err := f.svc.Budgets.Progress(f.ctx, f.user.ID, zero.ID, w)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if p.ProgressPercentage != 0 || !p.SpentAmount.Equal(dec("30")) {
		t.Errorf("zero budget pct = %d spent = %s, want 0/30", p.ProgressPercentage, p.SpentAmount)
	}

	p, err = f.svc.Budgets.Progress(f.ctx, f.user.ID, loose.ID, w)
	if err != nil || p != nil {
		t.Errorf("Progress without category = %v, %v, want nil, nil", p, err)
	}

	all, err := f.svc.Budgets.AllProgress(f.ctx, f.user.ID, w)
	if err != nil || len(all) != 2 {
		t.Fatalf("AllProgress = %d items, %v", len(all), err)
	}

	bob := f.newUser("bob")
	if _, err := f.svc.Budgets.Progress(f.ctx, bob.ID, zero.ID, w); !errors.Is(err, ErrNotFound) {
		t.Errorf("Progress by other user = %v, want ErrNotFound", err)
	}
}

// TestBudget_Summary counts a category shared by two budgets once.
func TestBudget_Summary(t *testing.T) {
	f := newFixture(t)
	food, rent, misc := f.category("Food"), f.category("Rent"), f.category("Misc")
	for _, in := range []BudgetInput{
		{Name: "Groceries", CategoryID: ref(food.ID), Amount: dec("100")},
		{Name: "Dining", CategoryID: ref(food.ID), Amount: dec("100")},
		{Name: "Rent", CategoryID: ref(rent.ID), Amount: dec("800")},
	} {
		if _, err := f.svc.Budgets.Create(f.ctx, f.user.ID, in); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}
	for _, e := range []struct {
		cat    models.Category
		amount string
	}{{food, "90"}, {rent, "800"}, {misc, "1000"}} {
		f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec(e.amount), CategoryID: ref(e.cat.ID), Date: day(2024, time.June, 5), CurrencyID: ref(f.usd.ID)})
	}

	s, err := f.svc.Budgets.Summary(f.ctx, f.user.ID, finance.Window{Year: 2024, Month: time.June})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !s.TotalBudgeted.Equal(dec("1000")) || !s.TotalSpent.Equal(dec("890")) {
		t.Errorf("summary budgeted = %s spent = %s, want 1000/890", s.TotalBudgeted, s.TotalSpent)
	}
	if s.Percentage != 89 || s.Status != finance.BudgetOnTrack {
		t.Errorf("summary pct = %d status = %s, want 89/on-track", s.Percentage, s.Status)
	}
	if s.Code != "USD" {
		t.Errorf("currency code = %s, want USD", s.Code)
	}
}

func TestBudget_UserCurrency(t *testing.T) {
	f := newFixture(t)
	var eur models.Currency
	if err := f.db.First(&eur, "code = ?", "EUR").Error; err != nil {
		t.Fatalf("load EUR: %v", err)
	}
	if err := f.db.Model(&f.user).Update("default_currency_id", eur.ID).Error; err != nil {
		t.Fatalf("set default currency: %v", err)
	}
	s, err := f.svc.Budgets.Summary(f.ctx, f.user.ID, finance.CurrentWindow(time.Now()))
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.Code != "EUR" || s.Symbol != "€" {
		t.Errorf("currency = %+v, want EUR/€", s.CurrencyDisplay)
	}
}

// TestBudget_AmountEditKeepsWindow edits only the amount of a past expense;
// the entry must stay in its month.
func TestBudget_AmountEditKeepsWindow(t *testing.T) {
	f := newFixture(t)
	food := f.category("Food")
	b, err := f.svc.Budgets.Create(f.ctx, f.user.ID, BudgetInput{Name: "Food", CategoryID: ref(food.ID), Amount: dec("200")})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	tx := f.create(TransactionInput{Type: models.TransactionExpense, Amount: dec("50"), CategoryID: ref(food.ID), Date: day(2024, time.March, 10), CurrencyID: ref(f.usd.ID)})
	off := false
	if _, err := f.svc.Transactions.Update(f.ctx, f.user.ID, tx.ID, TransactionInput{
		Type: models.TransactionExpense, Amount: dec("50"), CategoryID: ref(food.ID), CurrencyID: ref(f.usd.ID), Date: day(2024, time.March, 10), IsActive: &off,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	updated, err := f.svc.Transactions.Update(f.ctx, f.user.ID, tx.ID, TransactionInput{
		Type: models.TransactionExpense, Amount: dec("60"), CategoryID: ref(food.ID), CurrencyID: ref(f.usd.ID),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Date.Equal(*day(2024, time.March, 10)) || updated.IsActive {
		t.Fatalf("updated date = %s active = %v, want 2024-03-10 inactive", updated.Date, updated.IsActive)
	}

	on := true
	if _, err := f.svc.Transactions.Update(f.ctx, f.user.ID, tx.ID, TransactionInput{
		Type: models.TransactionExpense, Amount: dec("60"), CategoryID: ref(food.ID), CurrencyID: ref(f.usd.ID), IsActive: &on,
	}); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	p, err := f.svc.Budgets.Progress(f.ctx, f.user.ID, b.ID, finance.Window{Year: 2024, Month: time.March})
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if !p.SpentAmount.Equal(dec("60")) {
		t.Errorf("march spent = %s, want 60", p.SpentAmount)
	}
}
