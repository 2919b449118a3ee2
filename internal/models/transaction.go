package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Amount is always positive; the sign
// applied to an account comes from Type and the account slot.
type Transaction struct {
	Base
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Type        TransactionType `gorm:"size:16;index;not null" json:"type"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:255" json:"description"`
	IsActive    bool            `gorm:"index;not null" json:"is_active"`

	AccountID            *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	DestinationAccountID *uuid.UUID `gorm:"type:uuid;index" json:"destination_account_id"`
	CategoryID           *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	DebtID               *uuid.UUID `gorm:"type:uuid;index" json:"debt_id"`
	PaymentMethodID      *uuid.UUID `gorm:"type:uuid;index" json:"payment_method_id"`
	CurrencyID           *uuid.UUID `gorm:"type:uuid;index" json:"currency_id"`
}
