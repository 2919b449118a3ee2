package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a monthly spending ceiling for one category. Spent and remaining
// amounts are computed per window at read time and never stored.
type Budget struct {
	Base
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Name       string          `gorm:"size:100;index;not null" json:"name"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Color      string          `gorm:"size:50" json:"color"`
}
