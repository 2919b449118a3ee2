package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalType string

const (
	GoalSavings       GoalType = "savings"
	GoalInvestment    GoalType = "investment"
	GoalDebtPayment   GoalType = "debt_payment"
	GoalEmergencyFund GoalType = "emergency_fund"
	GoalRetirement    GoalType = "retirement"
	GoalEducation     GoalType = "education"
	GoalTravel        GoalType = "travel"
	GoalHome          GoalType = "home"
	GoalOther         GoalType = "other"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalSavings, GoalInvestment, GoalDebtPayment, GoalEmergencyFund,
		GoalRetirement, GoalEducation, GoalTravel, GoalHome, GoalOther:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive     GoalStatus = "active"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalPaused     GoalStatus = "paused"
	GoalCancelled  GoalStatus = "cancelled"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalInProgress, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}

// FinancialGoal tracks savings towards a target amount.
type FinancialGoal struct {
	Base
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Name          string          `gorm:"size:150;index;not null" json:"name"`
	Type          GoalType        `gorm:"size:32;not null" json:"type"`
	Status        GoalStatus      `gorm:"size:32;index;not null" json:"status"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"current_amount"`
	Deadline      *time.Time      `gorm:"index" json:"deadline"`
	CurrencyID    *uuid.UUID      `gorm:"type:uuid;index" json:"currency_id"`
}
