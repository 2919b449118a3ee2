package finance

import (
	"testing"
	"time"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}

// TestPercentage covers clamping, zero divisors and half-to-even rounding.
func TestPercentage(t *testing.T) {
	testCases := []struct {
		part, whole string
		want        int
	}{
		{"300", "1000", 30},
		{"1200", "1000", 100},
		{"50", "0", 0},
		{"50", "-10", 0},
		{"-5", "100", 0},
		{"1", "8", 12},   // 12.5 rounds to even
		{"3", "8", 38},   // 37.5 rounds to even
		{"999", "1000", 100},
		{"0", "1000", 0},
	}

	for _, tc := range testCases {
		got := Percentage(d(tc.part), d(tc.whole))
		if got != tc.want {
			t.Errorf("Percentage(%s, %s) = %d, want %d", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(d("1000"), d("300")); !got.Equal(d("700")) {
		t.Errorf("Remaining = %s, want 700", got)
	}
	if got := Remaining(d("1000"), d("1200")); !got.IsZero() {
		t.Errorf("Remaining = %s, want 0", got)
	}
}

// TestEffects checks the signed effect of every entry kind.
func TestEffects(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	income := &models.Transaction{Type: models.TransactionIncome, Amount: d("100"), IsActive: true, AccountID: ptr(a)}
	expense := &models.Transaction{Type: models.TransactionExpense, Amount: d("40"), IsActive: true, AccountID: ptr(a)}
	transfer := &models.Transaction{Type: models.TransactionTransfer, Amount: d("50"), IsActive: true, AccountID: ptr(a), DestinationAccountID: ptr(b)}
	inactive := &models.Transaction{Type: models.TransactionIncome, Amount: d("100"), IsActive: false, AccountID: ptr(a)}
	unlinked := &models.Transaction{Type: models.TransactionExpense, Amount: d("10"), IsActive: true}

	if got := Net(Effects(income)); !got[a].Equal(d("100")) {
		t.Errorf("income effect = %s, want 100", got[a])
	}
	if got := Net(Effects(expense)); !got[a].Equal(d("-40")) {
		t.Errorf("expense effect = %s, want -40", got[a])
	}
	got := Net(Effects(transfer))
	if !got[a].Equal(d("-50")) || !got[b].Equal(d("50")) {
		t.Errorf("transfer effects = %v, want a=-50 b=50", got)
	}
	if n := len(Effects(inactive)); n != 0 {
		t.Errorf("inactive entry has %d effects, want 0", n)
	}
	if n := len(Effects(unlinked)); n != 0 {
		t.Errorf("unlinked entry has %d effects, want 0", n)
	}
}

// TestEffects_ReverseThenApply checks that reversing the old version and
// applying the new one equals the plain difference.
func TestEffects_ReverseThenApply(t *testing.T) {
	a := uuid.New()
	old := &models.Transaction{Type: models.TransactionIncome, Amount: d("100"), IsActive: true, AccountID: ptr(a)}
	upd := &models.Transaction{Type: models.TransactionIncome, Amount: d("150"), IsActive: true, AccountID: ptr(a)}

	all := append(Reversed(Effects(old)), Effects(upd)...)
	balance := d("100").Add(Net(all)[a])
	if !balance.Equal(d("150")) {
		t.Errorf("balance after update = %s, want 150", balance)
	}

	same := append(Reversed(Effects(old)), Effects(old)...)
	if n := len(Net(same)); n != 0 {
		t.Errorf("reapplying an unchanged entry left %d net changes, want 0", n)
	}
}

func TestBalanceOf(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	txs := []models.Transaction{
		{Type: models.TransactionIncome, Amount: d("200"), IsActive: true, AccountID: ptr(a)},
		{Type: models.TransactionTransfer, Amount: d("50"), IsActive: true, AccountID: ptr(a), DestinationAccountID: ptr(b)},
		{Type: models.TransactionExpense, Amount: d("10.25"), IsActive: true, AccountID: ptr(b)},
		{Type: models.TransactionExpense, Amount: d("999"), IsActive: false, AccountID: ptr(a)},
	}

	if got := BalanceOf(a, txs); !got.Equal(d("150")) {
		t.Errorf("BalanceOf(a) = %s, want 150", got)
	}
	if got := BalanceOf(b, txs); !got.Equal(d("39.75")) {
		t.Errorf("BalanceOf(b) = %s, want 39.75", got)
	}
}

// TestComputeDebtProgress covers partial, over and zero-principal debts.
func TestComputeDebtProgress(t *testing.T) {
	debt := &models.Debt{Amount: d("1000")}
	p := ComputeDebtProgress(debt, []decimal.Decimal{d("300"), d("200")})
	if !p.PaidAmount.Equal(d("500")) || !p.RemainingAmount.Equal(d("500")) || p.PaymentProgress != 50 || p.IsPaid {
		t.Errorf("partial progress = %+v", p)
	}
	if p.PaidInstallments != nil {
		t.Error("non-installment debt got installment counters")
	}

	p = ComputeDebtProgress(debt, []decimal.Decimal{d("700"), d("500")})
	if !p.RemainingAmount.IsZero() || p.PaymentProgress != 100 || !p.IsPaid {
		t.Errorf("overpaid progress = %+v", p)
	}

	zero := &models.Debt{Amount: decimal.Zero}
	p = ComputeDebtProgress(zero, []decimal.Decimal{d("10")})
	if p.PaymentProgress != 0 {
		t.Errorf("zero principal progress = %d, want 0", p.PaymentProgress)
	}
}

func TestComputeDebtProgress_Installments(t *testing.T) {
	debt := &models.Debt{Amount: d("1200"), IsInstallment: true, TotalInstallments: 12}
	p := ComputeDebtProgress(debt, []decimal.Decimal{d("100"), d("100"), d("100")})
	if p.PaidInstallments == nil || *p.PaidInstallments != 3 || *p.RemainingInstallments != 9 {
		t.Fatalf("installments = %v/%v, want 3/9", p.PaidInstallments, p.RemainingInstallments)
	}

	debt.TotalInstallments = 2
	p = ComputeDebtProgress(debt, []decimal.Decimal{d("100"), d("100"), d("100")})
	if *p.RemainingInstallments != 0 {
		t.Errorf("remaining installments = %d, want 0", *p.RemainingInstallments)
	}
}

func TestDebtStatusFor(t *testing.T) {
	paid := DebtProgress{PaidAmount: d("10"), IsPaid: true}
	partial := DebtProgress{PaidAmount: d("10")}
	none := DebtProgress{PaidAmount: decimal.Zero}

	testCases := []struct {
		current models.DebtStatus
		p       DebtProgress
		want    models.DebtStatus
	}{
		{models.DebtPending, partial, models.DebtInProgress},
		{models.DebtPending, paid, models.DebtPaid},
		{models.DebtPaid, none, models.DebtPending},
		{models.DebtInProgress, none, models.DebtPending},
		{models.DebtDefaulted, partial, models.DebtDefaulted},
		{models.DebtRenegotiated, paid, models.DebtPaid},
	}
	for _, tc := range testCases {
		if got := DebtStatusFor(tc.current, tc.p); got != tc.want {
			t.Errorf("DebtStatusFor(%s) = %s, want %s", tc.current, got, tc.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	testCases := map[int]BudgetStatus{
		0:   BudgetOnTrack,
		89:  BudgetOnTrack,
		90:  BudgetWarning,
		99:  BudgetWarning,
		100: BudgetOverBudget,
	}
	for pct, want := range testCases {
		if got := StatusFor(pct); got != want {
			t.Errorf("StatusFor(%d) = %s, want %s", pct, got, want)
		}
	}
}

func TestComputeProgress_ZeroBudget(t *testing.T) {
	p := ComputeProgress(decimal.Zero, d("75"))
	if p.Percentage != 0 || !p.Remaining.IsZero() {
		t.Errorf("zero budget progress = %+v", p)
	}
}

// TestSpentByCategory_WindowIsolation checks that only active expenses with a
// category inside the window are counted.
func TestSpentByCategory_WindowIsolation(t *testing.T) {
	food := uuid.New()
	w := Window{Year: 2024, Month: time.March}
	in := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	before := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	txs := []models.Transaction{
		{Type: models.TransactionExpense, Amount: d("10"), Date: in, IsActive: true, CategoryID: ptr(food)},
		{Type: models.TransactionExpense, Amount: d("5"), Date: last, IsActive: true, CategoryID: ptr(food)},
		{Type: models.TransactionExpense, Amount: d("100"), Date: before, IsActive: true, CategoryID: ptr(food)},
		{Type: models.TransactionExpense, Amount: d("100"), Date: after, IsActive: true, CategoryID: ptr(food)},
		{Type: models.TransactionIncome, Amount: d("100"), Date: in, IsActive: true, CategoryID: ptr(food)},
		{Type: models.TransactionExpense, Amount: d("100"), Date: in, IsActive: false, CategoryID: ptr(food)},
		{Type: models.TransactionExpense, Amount: d("100"), Date: in, IsActive: true},
	}

	got := SpentByCategory(txs, w)
	if !got[food].Equal(d("15")) {
		t.Errorf("spent = %s, want 15", got[food])
	}
}

func TestSummarize(t *testing.T) {
	food, rent := uuid.New(), uuid.New()
	budgets := []models.Budget{
		{Amount: d("100"), CategoryID: ptr(food)},
		{Amount: d("50"), CategoryID: ptr(food)},
		{Amount: d("800"), CategoryID: ptr(rent)},
		{Amount: d("50")},
	}
	spent := map[uuid.UUID]decimal.Decimal{food: d("60"), rent: d("800"), uuid.New(): d("500")}

	p := Summarize(budgets, spent)
	if !p.Budgeted.Equal(d("1000")) {
		t.Errorf("budgeted = %s, want 1000", p.Budgeted)
	}
	if !p.Spent.Equal(d("860")) {
		t.Errorf("spent = %s, want 860 (food counted once)", p.Spent)
	}
	if p.Percentage != 86 || p.Status() != BudgetOnTrack {
		t.Errorf("percentage = %d status = %s", p.Percentage, p.Status())
	}
}

func TestNewWindow(t *testing.T) {
	now := time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)

	w, err := NewWindow(0, 0, now)
	if err != nil || w.Year != 2025 || w.Month != time.July {
		t.Errorf("NewWindow(0, 0) = %v, %v", w, err)
	}
	w, err = NewWindow(2023, 12, now)
	if err != nil || w.String() != "2023-12" {
		t.Errorf("NewWindow(2023, 12) = %v, %v", w, err)
	}
	start, end := w.Bounds()
	if !start.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Bounds = %v, %v", start, end)
	}
	if _, err := NewWindow(2024, 13, now); err == nil {
		t.Error("NewWindow(2024, 13) error = nil, want error")
	}
	if p := (Window{Year: 2024, Month: time.January}).Previous(); p.String() != "2023-12" {
		t.Errorf("Previous = %s, want 2023-12", p)
	}
}

func TestNextPaymentDate(t *testing.T) {
	testCases := []struct {
		from time.Time
		freq models.SubscriptionFrequency
		want time.Time
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), models.FrequencyMonthly, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), models.FrequencyMonthly, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), models.FrequencyMonthly, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), models.FrequencyQuarterly, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), models.FrequencyYearly, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		if got := NextPaymentDate(tc.from, tc.freq); !got.Equal(tc.want) {
			t.Errorf("NextPaymentDate(%s, %s) = %s, want %s", tc.from.Format("2006-01-02"), tc.freq, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	if got := DaysUntil(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), now); got != 5 {
		t.Errorf("DaysUntil = %d, want 5", got)
	}
	if got := DaysUntil(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), now); got != -2 {
		t.Errorf("DaysUntil = %d, want -2", got)
	}
}
