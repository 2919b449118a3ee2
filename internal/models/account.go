package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountDigital    AccountType = "digital"
	AccountCash       AccountType = "cash"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountSavings    AccountType = "savings"
	AccountChecking   AccountType = "checking"
	AccountOther      AccountType = "other"
)

// AccountTypes lists every accepted account type in display order.
var AccountTypes = []AccountType{
	AccountBank, AccountDigital, AccountCash, AccountCredit,
	AccountInvestment, AccountSavings, AccountChecking, AccountOther,
}

func (t AccountType) Valid() bool {
	for _, at := range AccountTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Account holds money for a user. Balance is derived from the ledger and
// must only be written by the balance maintainer.
type Account struct {
	Base
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	CurrencyID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"currency_id"`
	Name        string          `gorm:"size:150;index;not null" json:"name"`
	Type        AccountType     `gorm:"size:16;index;not null" json:"type"`
	Institution string          `gorm:"size:150" json:"institution"`
	Icon        string          `gorm:"size:255" json:"icon"`
	Color       string          `gorm:"size:50" json:"color"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance"`
	IsDefault   bool            `gorm:"not null" json:"is_default"`
}
