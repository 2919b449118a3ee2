package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// maxAmount caps any single money value accepted from clients.
var maxAmount = decimal.NewFromInt(1_000_000_000)

// ValidateAmount checks that amount is positive, within range and has at
// most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	return checkAmount(amount)
}

// ValidateNonNegative is ValidateAmount that also accepts zero.
func ValidateNonNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", amount)
	}
	return checkAmount(amount)
}

func checkAmount(amount decimal.Decimal) error {
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount has more than two decimal places: %s", amount)
	}
	return nil
}

// ValidateDate checks that dateStr is a YYYY-MM-DD date.
func ValidateDate(dateStr string) error {
	_, err := ParseDate(dateStr)
	return err
}

// ParseDate parses a YYYY-MM-DD date, or an RFC 3339 timestamp, as UTC.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(DateLayout, dateStr); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %q", dateStr)
	}
	return t.UTC(), nil
}

// ParseOptionalDate is ParseDate that maps an empty string to nil.
func ParseOptionalDate(dateStr string) (*time.Time, error) {
	if strings.TrimSpace(dateStr) == "" {
		return nil, nil
	}
	t, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseUUID parses a path or query id.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// ParseOptionalUUID maps an empty string to nil.
func ParseOptionalUUID(s string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseUUID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseInt parses an optional integer query value, returning def when empty.
func ParseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// ValidateName checks a user supplied display name.
func ValidateName(name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len([]rune(name)) > max {
		return fmt.Errorf("name too long, max %d characters", max)
	}
	return nil
}
