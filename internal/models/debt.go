package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtType string

const (
	DebtPersonal   DebtType = "personal"
	DebtCreditCard DebtType = "credit_card"
	DebtMortgage   DebtType = "mortgage"
	DebtAuto       DebtType = "auto"
	DebtStudent    DebtType = "student"
	DebtBusiness   DebtType = "business"
	DebtMedical    DebtType = "medical"
	DebtOther      DebtType = "other"
)

// Valid reports whether t is a known debt type.
func (t DebtType) Valid() bool {
	switch t {
	case DebtPersonal, DebtCreditCard, DebtMortgage, DebtAuto,
		DebtStudent, DebtBusiness, DebtMedical, DebtOther:
		return true
	}
	return false
}

type DebtStatus string

const (
	DebtPending      DebtStatus = "pending"
	DebtInProgress   DebtStatus = "in_progress"
	DebtPaid         DebtStatus = "paid"
	DebtDefaulted    DebtStatus = "defaulted"
	DebtRenegotiated DebtStatus = "renegotiated"
)

func (s DebtStatus) Valid() bool {
	switch s {
	case DebtPending, DebtInProgress, DebtPaid, DebtDefaulted, DebtRenegotiated:
		return true
	}
	return false
}

// Debt is money owed by the user. Amount is the fixed principal; the paid,
// remaining, progress and installment counters are recomputed from linked
// transactions and overwritten on every recalculation.
type Debt struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Description     string          `gorm:"size:255" json:"description"`
	Type            DebtType        `gorm:"size:32;not null" json:"type"`
	Status          DebtStatus      `gorm:"size:32;index;not null" json:"status"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"interest_rate"`
	DueDate         *time.Time      `gorm:"index" json:"due_date"`
	CurrencyID      *uuid.UUID      `gorm:"type:uuid;index" json:"currency_id"`
	AccountID       *uuid.UUID      `gorm:"type:uuid;index" json:"account_id"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid;index" json:"payment_method_id"`

	PaidAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"remaining_amount"`
	PaymentProgress int             `gorm:"not null" json:"payment_progress"`
	IsPaid          bool            `gorm:"index;not null" json:"is_paid"`

	IsInstallment         bool `gorm:"not null" json:"is_installment"`
	TotalInstallments     int  `gorm:"not null" json:"total_installments"`
	PaidInstallments      int  `gorm:"not null" json:"paid_installments"`
	RemainingInstallments int  `gorm:"not null" json:"remaining_installments"`
}
