package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionFrequency string

const (
	FrequencyMonthly   SubscriptionFrequency = "monthly"
	FrequencyQuarterly SubscriptionFrequency = "quarterly"
	FrequencyYearly    SubscriptionFrequency = "yearly"
)

func (f SubscriptionFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionActive         SubscriptionStatus = "active"
	SubscriptionCancelled      SubscriptionStatus = "cancelled"
	SubscriptionPaused         SubscriptionStatus = "paused"
	SubscriptionExpired        SubscriptionStatus = "expired"
	SubscriptionPendingRenewal SubscriptionStatus = "pending_renewal"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionPaused,
		SubscriptionExpired, SubscriptionPendingRenewal:
		return true
	}
	return false
}

// Subscription is a recurring charge. NextPaymentDate advances one period on
// every renewal.
type Subscription struct {
	Base
	UserID          uuid.UUID             `gorm:"type:uuid;index;not null" json:"user_id"`
	ServiceName     string                `gorm:"size:150;index;not null" json:"service_name"`
	Amount          decimal.Decimal       `gorm:"type:decimal(20,2);not null" json:"amount"`
	Frequency       SubscriptionFrequency `gorm:"size:16;index;not null" json:"frequency"`
	NextPaymentDate time.Time             `gorm:"index;not null" json:"next_payment_date"`
	Status          SubscriptionStatus    `gorm:"size:32;index;not null" json:"status"`
	Icon            string                `gorm:"size:255" json:"icon"`
	Color           string                `gorm:"size:50" json:"color"`
	AccountID       *uuid.UUID            `gorm:"type:uuid;index" json:"account_id"`
	CurrencyID      *uuid.UUID            `gorm:"type:uuid;index" json:"currency_id"`
}
