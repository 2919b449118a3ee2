package models

import "github.com/google/uuid"

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category represents income/expense category.
type Category struct {
	Base
	UserID uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	Name   string       `gorm:"size:64;not null" json:"name"`
	Type   CategoryType `gorm:"size:16;index;not null" json:"type"`
	Icon   string       `gorm:"size:255" json:"icon"`
	Color  string       `gorm:"size:50" json:"color"`
}
