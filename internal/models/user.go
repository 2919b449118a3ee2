package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents application user.
type User struct {
	Base
	Username          string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	FullName          string     `gorm:"size:128" json:"full_name"`
	DefaultCurrencyID *uuid.UUID `gorm:"type:uuid" json:"default_currency_id"`

	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `gorm:"index" json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP         string     `gorm:"size:64" json:"-"`
}
