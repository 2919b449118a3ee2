package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserSummary is the dashboard view of a user's finances for one month.
type UserSummary struct {
	TotalBalance            decimal.Decimal  `json:"total_balance"`
	AccountCount            int              `json:"account_count"`
	MonthlyIncome           decimal.Decimal  `json:"monthly_income"`
	MonthlyExpense          decimal.Decimal  `json:"monthly_expense"`
	NetSavings              decimal.Decimal  `json:"net_savings"`
	PreviousIncome          decimal.Decimal  `json:"previous_income"`
	PreviousExpense         decimal.Decimal  `json:"previous_expense"`
	IncomeChange            *decimal.Decimal `json:"income_change_percentage"`
	ExpenseChange           *decimal.Decimal `json:"expense_change_percentage"`
	OutstandingDebt         decimal.Decimal  `json:"outstanding_debt"`
	OpenDebts               int              `json:"open_debts"`
	ActiveSubscriptions     int              `json:"active_subscriptions"`
	MonthlySubscriptionCost decimal.Decimal  `json:"monthly_subscription_cost"`
	Year                    int              `json:"year"`
	Month                   int              `json:"month"`
	CurrencyDisplay
}

type MonthlyExpense struct {
	Month         int             `json:"month"`
	MonthName     string          `json:"month_name"`
	Year          int             `json:"year"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

type DailyExpense struct {
	Date          string          `json:"date"`
	DayName       string          `json:"day_name"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

type ExpenseSummary struct {
	Monthly []MonthlyExpense `json:"monthly_summary"`
	Daily   []DailyExpense   `json:"daily_summary"`
}

// SummaryService builds read-only aggregates. Amounts are summed as stored;
// no conversion between currencies happens.
type SummaryService struct {
	db       *gorm.DB
	currency *CurrencyResolver
	now      func() time.Time
}

func NewSummaryService(db *gorm.DB, currency *CurrencyResolver) *SummaryService {
	return &SummaryService{db: db, currency: currency, now: time.Now}
}

// totals sums active income and expense entries of the user in [from, to).
func (s *SummaryService) totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (income, expense decimal.Decimal, err error) {
	var txs []models.Transaction
	err = s.db.WithContext(ctx).
		Select("amount", "type").
		Scopes(ownedBy(userID)).
		Where("is_active = ? AND type IN ?", true, []models.TransactionType{models.TransactionIncome, models.TransactionExpense}).
		Where("date >= ? AND date < ?", from, to).
		Find(&txs).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("load totals: %w", err)
	}
	income, expense = decimal.Zero, decimal.Zero
	for _, t := range txs {
		if t.Type == models.TransactionIncome {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense, nil
}

// change is the percentage change from prev to cur, nil when prev is zero.
func change(cur, prev decimal.Decimal) *decimal.Decimal {
	if prev.IsZero() {
		return nil
	}
	c := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).RoundBank(2)
	return &c
}

// User builds the summary for window w.
func (s *SummaryService) User(ctx context.Context, userID uuid.UUID, w finance.Window) (*UserSummary, error) {
	db := s.db.WithContext(ctx)
	out := &UserSummary{Year: w.Year, Month: int(w.Month)}

	var accounts []models.Account
	if err := db.Select("balance").Scopes(ownedBy(userID)).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for _, a := range accounts {
		out.TotalBalance = out.TotalBalance.Add(a.Balance)
	}
	out.AccountCount = len(accounts)

	start, end := w.Bounds()
	var err error
	if out.MonthlyIncome, out.MonthlyExpense, err = s.totals(ctx, userID, start, end); err != nil {
		return nil, err
	}
	pstart, pend := w.Previous().Bounds()
	if out.PreviousIncome, out.PreviousExpense, err = s.totals(ctx, userID, pstart, pend); err != nil {
		return nil, err
	}
	out.NetSavings = out.MonthlyIncome.Sub(out.MonthlyExpense)
	out.IncomeChange = change(out.MonthlyIncome, out.PreviousIncome)
	out.ExpenseChange = change(out.MonthlyExpense, out.PreviousExpense)

	var debts []models.Debt
	if err := db.Select("remaining_amount").Scopes(ownedBy(userID)).Where("is_paid = ?", false).Find(&debts).Error; err != nil {
		return nil, fmt.Errorf("load debts: %w", err)
	}
	for _, d := range debts {
		out.OutstandingDebt = out.OutstandingDebt.Add(d.RemainingAmount)
	}
	out.OpenDebts = len(debts)

	var subs []models.Subscription
	if err := db.Select("amount", "frequency").Scopes(ownedBy(userID)).Where("status = ?", models.SubscriptionActive).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, sub := range subs {
		out.MonthlySubscriptionCost = out.MonthlySubscriptionCost.Add(finance.MonthlyEquivalent(sub.Amount, sub.Frequency))
	}
	out.ActiveSubscriptions = len(subs)

	cur, err := s.currency.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out.CurrencyDisplay = cur
	return out, nil
}

// expenses loads active expense entries of the user in [from, to).
func (s *SummaryService) expenses(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Select("amount", "date").
		Scopes(ownedBy(userID)).
		Where("is_active = ? AND type = ?", true, models.TransactionExpense).
		Where("date >= ? AND date < ?", from, to).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return txs, nil
}

// Expenses returns monthly totals for year and daily totals for the last
// days days, today included. A zero year means the current one.
func (s *SummaryService) Expenses(ctx context.Context, userID uuid.UUID, year, days int) (*ExpenseSummary, error) {
	now := s.now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if days < 1 || days > 365 {
		return nil, invalid("days must be between 1 and 365")
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	txs, err := s.expenses(ctx, userID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	var byMonth [12]decimal.Decimal
	for _, t := range txs {
		m := t.Date.UTC().Month() - 1
		byMonth[m] = byMonth[m].Add(t.Amount)
	}
	out := &ExpenseSummary{}
	for i := 0; i < 12; i++ {
		m := time.Month(i + 1)
		out.Monthly = append(out.Monthly, MonthlyExpense{
			Month:         int(m),
			MonthName:     m.String()[:3],
			Year:          year,
			TotalExpenses: byMonth[i],
		})
	}

	end := today(now).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)
	txs, err = s.expenses(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]decimal.Decimal)
	for _, t := range txs {
		key := t.Date.UTC().Format("2006-01-02")
		byDay[key] = byDay[key].Add(t.Amount)
	}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out.Daily = append(out.Daily, DailyExpense{
			Date:          key,
			DayName:       d.Weekday().String()[:3],
			TotalExpenses: byDay[key],
		})
	}
	return out, nil
}
