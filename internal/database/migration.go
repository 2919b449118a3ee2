package database

import (
	"errors"
	"fmt"

	"finance-tracker/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Currency{},
		&models.Category{},
		&models.PaymentMethod{},
		&models.Account{},
		&models.Transaction{},
		&models.Debt{},
		&models.Budget{},
		&models.Subscription{},
		&models.FinancialGoal{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

var defaultCurrencies = []models.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
}

// SeedCurrencies inserts the built-in currencies that are not present yet.
func SeedCurrencies(db *gorm.DB) error {
	for _, c := range defaultCurrencies {
		var existing models.Currency
		err := db.Where("code = ?", c.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
		cur := c
		if err := db.Create(&cur).Error; err != nil {
			return fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
	}
	return nil
}
