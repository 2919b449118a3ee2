package service

import (
	"context"
	"errors"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrencyDisplay is the symbol/code pair shown next to amounts.
type CurrencyDisplay struct {
	Symbol string `json:"currency_symbol"`
	Code   string `json:"currency_code"`
}

// CurrencyResolver looks up a user's display currency with a configured
// fallback.
type CurrencyResolver struct {
	db       *gorm.DB
	fallback CurrencyDisplay
}

func NewCurrencyResolver(db *gorm.DB, code, symbol string) *CurrencyResolver {
	return &CurrencyResolver{db: db, fallback: CurrencyDisplay{Symbol: symbol, Code: code}}
}

// Fallback returns the configured default.
func (r *CurrencyResolver) Fallback() CurrencyDisplay {
	return r.fallback
}

// ForUser resolves the user's default currency. Missing users, unset
// defaults and dangling currency ids all yield the fallback.
func (r *CurrencyResolver) ForUser(ctx context.Context, userID uuid.UUID) (CurrencyDisplay, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "default_currency_id").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.fallback, nil
		}
		return CurrencyDisplay{}, lookup(err, "user")
	}
	if user.DefaultCurrencyID == nil {
		return r.fallback, nil
	}
	var cur models.Currency
	err = r.db.WithContext(ctx).First(&cur, "id = ?", *user.DefaultCurrencyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.fallback, nil
		}
		return CurrencyDisplay{}, lookup(err, "currency")
	}
	return CurrencyDisplay{Symbol: cur.Symbol, Code: cur.Code}, nil
}
