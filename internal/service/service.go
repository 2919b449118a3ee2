package service

import (
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Services bundles every domain service sharing one database handle.
type Services struct {
	Balance       *BalanceMaintainer
	Debts         *DebtService
	Budgets       *BudgetService
	Transactions  *TransactionService
	Accounts      *AccountService
	Goals         *GoalService
	Subscriptions *SubscriptionService
	Summary       *SummaryService
	Catalog       *CatalogService
	Export        *ExportService
	Currency      *CurrencyResolver
}

// New wires the services together.
func New(db *gorm.DB, cfg *config.Config, logger *log.Logger) *Services {
	currency := NewCurrencyResolver(db, cfg.Currency.DefaultCode, cfg.Currency.DefaultSymbol)
	balance := NewBalanceMaintainer(db, logger)
	debts := NewDebtService(db, balance, logger)
	txs := NewTransactionService(db, balance, debts, logger)
	return &Services{
		Balance:       balance,
		Debts:         debts,
		Budgets:       NewBudgetService(db, currency, logger),
		Transactions:  txs,
		Accounts:      NewAccountService(db, balance, txs, logger),
		Goals:         NewGoalService(db),
		Subscriptions: NewSubscriptionService(db, logger),
		Summary:       NewSummaryService(db, currency),
		Catalog:       NewCatalogService(db),
		Export:        NewExportService(db, logger),
		Currency:      currency,
	}
}

// ownedBy scopes a query to rows of one user.
func ownedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// today returns the current UTC date at midnight.
func today(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func uuidSet(ids ...*uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, id := range ids {
		if id == nil || *id == uuid.Nil || seen[*id] {
			continue
		}
		seen[*id] = true
		out = append(out, *id)
	}
	return out
}
