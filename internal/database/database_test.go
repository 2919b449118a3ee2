package database

import (
	"path/filepath"
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/models"
)

func TestInit_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close(db)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	for _, m := range []any{&models.User{}, &models.Account{}, &models.Transaction{}, &models.Debt{}, &models.Budget{}} {
		if !db.Migrator().HasTable(m) {
			t.Errorf("table for %T missing", m)
		}
	}
	if got := ForUpdate(db).Statement.Clauses["FOR"]; got.Expression != nil {
		t.Errorf("sqlite should not get a locking clause, got %v", got)
	}
}

func TestInit_UnknownDriver(t *testing.T) {
	if _, err := Init(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("Init(oracle) error = nil, want error")
	}
}

func TestSeedCurrencies_Idempotent(t *testing.T) {
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "seed.db")})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close(db)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedCurrencies(db); err != nil {
			t.Fatalf("SeedCurrencies run %d: %v", i+1, err)
		}
	}
	var n int64
	if err := db.Model(&models.Currency{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != int64(len(defaultCurrencies)) {
		t.Errorf("%d currencies, want %d", n, len(defaultCurrencies))
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("data/x.db"); got != "data/x.db?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL" {
		t.Errorf("sqliteDSN = %q", got)
	}
	if got := sqliteDSN("file:x.db?mode=memory"); got != "file:x.db?mode=memory" {
		t.Errorf("sqliteDSN kept options = %q", got)
	}
}
