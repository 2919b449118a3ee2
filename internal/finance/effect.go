package finance

import (
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Slot names which account field of an entry an effect lands on.
type Slot int

const (
	SlotSource Slot = iota
	SlotDestination
)

// Effect is the signed change an entry makes to one account balance.
type Effect struct {
	AccountID uuid.UUID
	Slot      Slot
	Delta     decimal.Decimal
}

// Sign returns the multiplier applied to an entry amount of type t booked on
// the given slot. Only transfers have a destination slot.
func Sign(t models.TransactionType, slot Slot) int64 {
	switch t {
	case models.TransactionIncome:
		if slot == SlotSource {
			return 1
		}
	case models.TransactionExpense:
		if slot == SlotSource {
			return -1
		}
	case models.TransactionTransfer:
		if slot == SlotSource {
			return -1
		}
		return 1
	}
	return 0
}

// Effects lists the balance changes of an entry. Inactive entries and
// entries without account links have none.
func Effects(tx *models.Transaction) []Effect {
	if tx == nil || !tx.IsActive {
		return nil
	}
	var out []Effect
	if tx.AccountID != nil {
		if s := Sign(tx.Type, SlotSource); s != 0 {
			out = append(out, Effect{AccountID: *tx.AccountID, Slot: SlotSource, Delta: tx.Amount.Mul(decimal.NewFromInt(s))})
		}
	}
	if tx.DestinationAccountID != nil {
		if s := Sign(tx.Type, SlotDestination); s != 0 {
			out = append(out, Effect{AccountID: *tx.DestinationAccountID, Slot: SlotDestination, Delta: tx.Amount.Mul(decimal.NewFromInt(s))})
		}
	}
	return out
}

// Reversed negates every effect.
func Reversed(effects []Effect) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{AccountID: e.AccountID, Slot: e.Slot, Delta: e.Delta.Neg()}
	}
	return out
}

// Net folds a list of effects into one delta per account, dropping accounts
// whose changes cancel out.
func Net(effects []Effect) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range effects {
		out[e.AccountID] = out[e.AccountID].Add(e.Delta)
	}
	for id, d := range out {
		if d.IsZero() {
			delete(out, id)
		}
	}
	return out
}

// BalanceOf is the from-scratch balance of accountID over txs.
func BalanceOf(accountID uuid.UUID, txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		for _, e := range Effects(&txs[i]) {
			if e.AccountID == accountID {
				total = total.Add(e.Delta)
			}
		}
	}
	return total
}
