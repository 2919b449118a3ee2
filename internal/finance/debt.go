package finance

import (
	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// DebtProgress is the derived state of a debt computed from its payments.
type DebtProgress struct {
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount"`
	PaymentProgress       int             `json:"payment_progress"`
	IsPaid                bool            `json:"is_paid"`
	PaidInstallments      *int            `json:"paid_installments,omitempty"`
	RemainingInstallments *int            `json:"remaining_installments,omitempty"`
}

// ComputeDebtProgress derives debt progress from the amounts of every active
// payment linked to the debt. Installment counters are only filled for
// installment debts.
func ComputeDebtProgress(d *models.Debt, payments []decimal.Decimal) DebtProgress {
	paid := Sum(payments...)
	remaining := Remaining(d.Amount, paid)
	p := DebtProgress{
		PaidAmount:      paid,
		RemainingAmount: remaining,
		PaymentProgress: Percentage(paid, d.Amount),
		IsPaid:          !remaining.IsPositive(),
	}
	if d.IsInstallment {
		count := len(payments)
		left := d.TotalInstallments - count
		if left < 0 {
			left = 0
		}
		p.PaidInstallments = &count
		p.RemainingInstallments = &left
	}
	return p
}

// Apply writes the derived fields onto d and moves its status between
// pending, in_progress and paid. Manually set states such as defaulted or
// renegotiated are kept unless the debt became fully paid.
func (p DebtProgress) Apply(d *models.Debt) {
	d.PaidAmount = p.PaidAmount
	d.RemainingAmount = p.RemainingAmount
	d.PaymentProgress = p.PaymentProgress
	d.IsPaid = p.IsPaid
	if p.PaidInstallments != nil {
		d.PaidInstallments = *p.PaidInstallments
		d.RemainingInstallments = *p.RemainingInstallments
	}
	d.Status = DebtStatusFor(d.Status, p)
}

// DebtStatusFor returns the status a debt should carry after a recompute.
func DebtStatusFor(current models.DebtStatus, p DebtProgress) models.DebtStatus {
	if p.IsPaid {
		return models.DebtPaid
	}
	switch current {
	case models.DebtDefaulted, models.DebtRenegotiated:
		return current
	}
	if p.PaidAmount.IsPositive() {
		return models.DebtInProgress
	}
	return models.DebtPending
}
