package models

// Currency is a global catalog entry shared by all users.
type Currency struct {
	Base
	Code   string `gorm:"size:8;uniqueIndex;not null" json:"code"`
	Name   string `gorm:"size:64;not null" json:"name"`
	Symbol string `gorm:"size:8;not null" json:"symbol"`
}
