package models

import "github.com/google/uuid"

type PaymentMethodType string

const (
	PaymentCash     PaymentMethodType = "cash"
	PaymentTransfer PaymentMethodType = "transfer"
	PaymentCard     PaymentMethodType = "card"
	PaymentOther    PaymentMethodType = "other"
)

func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentOther:
		return true
	}
	return false
}

type PaymentMethod struct {
	Base
	UserID uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Name   string            `gorm:"size:64;not null" json:"name"`
	Type   PaymentMethodType `gorm:"size:16;not null" json:"type"`
}
