package finance

import (
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// AddMonthsClamped adds n months to t, pinning the day to the last day of
// the target month when it would overflow (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

// NextPaymentDate advances from by one billing period.
func NextPaymentDate(from time.Time, freq models.SubscriptionFrequency) time.Time {
	switch freq {
	case models.FrequencyQuarterly:
		return AddMonthsClamped(from, 3)
	case models.FrequencyYearly:
		return AddMonthsClamped(from, 12)
	default:
		return AddMonthsClamped(from, 1)
	}
}

// DaysUntil counts whole calendar days from now to t. Past dates are negative.
func DaysUntil(t, now time.Time) int {
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// MonthlyEquivalent normalises a subscription amount to a monthly cost.
func MonthlyEquivalent(amount decimal.Decimal, freq models.SubscriptionFrequency) decimal.Decimal {
	switch freq {
	case models.FrequencyQuarterly:
		return amount.Div(decimal.NewFromInt(3)).Round(2)
	case models.FrequencyYearly:
		return amount.Div(decimal.NewFromInt(12)).Round(2)
	default:
		return amount
	}
}

// GoalProgress is the clamped completion percentage of a goal.
func GoalProgress(current, target decimal.Decimal) int {
	return Percentage(current, target)
}
