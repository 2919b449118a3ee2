package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fixture is a migrated temp database with one user and wired services.
type fixture struct {
	t    *testing.T
	ctx  context.Context
	db   *gorm.DB
	svc  *Services
	user models.User
	usd  models.Currency
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	if err := database.SeedCurrencies(db); err != nil {
		t.Fatalf("seed currencies: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{Currency: config.CurrencyConfig{DefaultCode: "USD", DefaultSymbol: "$"}}
	f := &fixture{t: t, ctx: context.Background(), db: db, svc: New(db, cfg, log.Discard())}
	if err := db.First(&f.usd, "code = ?", "USD").Error; err != nil {
		t.Fatalf("load USD: %v", err)
	}
	f.user = f.newUser("alice")
	return f
}

func (f *fixture) newUser(name string) models.User {
	f.t.Helper()
	u := models.User{Username: name, PasswordHash: "x"}
	if err := f.db.Create(&u).Error; err != nil {
		f.t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) account(name string) models.Account {
	f.t.Helper()
	acc, err := f.svc.Accounts.Create(f.ctx, f.user.ID, AccountInput{
		Name: name, Type: models.AccountBank, CurrencyID: f.usd.ID,
	})
	if err != nil {
		f.t.Fatalf("create account %s: %v", name, err)
	}
	return *acc
}

func (f *fixture) category(name string) models.Category {
	f.t.Helper()
	c, err := f.svc.Catalog.SaveCategory(f.ctx, f.user.ID, nil, models.Category{Name: name, Type: models.CategoryExpense})
	if err != nil {
		f.t.Fatalf("create category %s: %v", name, err)
	}
	return *c
}

func (f *fixture) debt(amount string) models.Debt {
	f.t.Helper()
	d, err := f.svc.Debts.Create(f.ctx, f.user.ID, DebtInput{
		Name: "loan", Type: models.DebtPersonal, Amount: dec(amount), CurrencyID: &f.usd.ID,
	})
	if err != nil {
		f.t.Fatalf("create debt: %v", err)
	}
	return *d
}

func (f *fixture) create(in TransactionInput) models.Transaction {
	f.t.Helper()
	tx, err := f.svc.Transactions.Create(f.ctx, f.user.ID, in)
	if err != nil {
		f.t.Fatalf("create transaction: %v", err)
	}
	return *tx
}

func (f *fixture) balance(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	var acc models.Account
	if err := f.db.First(&acc, "id = ?", id).Error; err != nil {
		f.t.Fatalf("load account: %v", err)
	}
	return acc.Balance
}

func (f *fixture) reloadDebt(id uuid.UUID) models.Debt {
	f.t.Helper()
	var d models.Debt
	if err := f.db.First(&d, "id = ?", id).Error; err != nil {
		f.t.Fatalf("load debt: %v", err)
	}
	return d
}

// assertConsistent checks stored balances against a full recomputation.
func (f *fixture) assertConsistent(ids ...uuid.UUID) {
	f.t.Helper()
	for _, id := range ids {
		check, err := f.svc.Balance.Verify(f.ctx, id)
		if err != nil {
			f.t.Errorf("Verify(%s) = %v (stored %s, computed %s)", id, err, check.Stored, check.Computed)
		}
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
