package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"finance-tracker/internal/database"
	"finance-tracker/internal/finance"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceMaintainer is the only writer of Account.Balance. Every method that
// takes a *gorm.DB expects to run inside the caller's transaction.
type BalanceMaintainer struct {
	db  *gorm.DB
	log *log.Logger
}

func NewBalanceMaintainer(db *gorm.DB, logger *log.Logger) *BalanceMaintainer {
	return &BalanceMaintainer{db: db, log: logger.WithComponent(log.ComponentBalance)}
}

// ApplyChange moves balances from the state described by previous to the one
// described by current. Either side may be nil: create passes no previous,
// delete passes no current. Both versions are folded into one net delta per
// account so the reversal and reapplication land in a single row write.
func (b *BalanceMaintainer) ApplyChange(ctx context.Context, tx *gorm.DB, current, previous *models.Transaction) error {
	var effects []finance.Effect
	if previous != nil {
		effects = append(effects, finance.Reversed(finance.Effects(previous))...)
	}
	if current != nil {
		effects = append(effects, finance.Effects(current)...)
	}
	return b.applyNet(ctx, tx, finance.Net(effects))
}

// Apply books a new entry.
func (b *BalanceMaintainer) Apply(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	return b.ApplyChange(ctx, tx, t, nil)
}

// Reverse removes the effect of an entry.
func (b *BalanceMaintainer) Reverse(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	return b.ApplyChange(ctx, tx, nil, t)
}

func (b *BalanceMaintainer) applyNet(ctx context.Context, tx *gorm.DB, net map[uuid.UUID]decimal.Decimal) error {
	ids := make([]uuid.UUID, 0, len(net))
	for id := range net {
		ids = append(ids, id)
	}
	// fixed lock order
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		var acc models.Account
		err := database.ForUpdate(tx.WithContext(ctx)).Select("id", "balance").First(&acc, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.log.WarnContext(ctx, "account missing, balance change skipped",
				log.FieldAccountID, id.String(), "delta", net[id].String())
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: load account %s: %v", ErrIntegrity, id, err)
		}
		if err := b.write(ctx, tx, id, acc.Balance.Add(net[id])); err != nil {
			return err
		}
	}
	return nil
}

func (b *BalanceMaintainer) write(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, balance decimal.Decimal) error {
	err := tx.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", balance).Error
	if err != nil {
		b.log.ErrorContext(ctx, "balance write failed",
			log.FieldAccountID, accountID.String(), log.FieldError, err.Error())
		return fmt.Errorf("%w: update balance of account %s: %v", ErrIntegrity, accountID, err)
	}
	return nil
}

// computed sums every active entry touching the account in either slot.
func (b *BalanceMaintainer) computed(ctx context.Context, db *gorm.DB, accountID uuid.UUID) (decimal.Decimal, error) {
	var txs []models.Transaction
	err := db.WithContext(ctx).
		Where("is_active = ? AND (account_id = ? OR destination_account_id = ?)", true, accountID, accountID).
		Find(&txs).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("load account entries: %w", err)
	}
	return finance.BalanceOf(accountID, txs), nil
}

// Recompute rebuilds the balance from scratch and stores it. It produces the
// same value as the incremental path.
func (b *BalanceMaintainer) Recompute(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (decimal.Decimal, error) {
	var acc models.Account
	if err := database.ForUpdate(tx.WithContext(ctx)).First(&acc, "id = ?", accountID).Error; err != nil {
		return decimal.Zero, lookup(err, "account")
	}
	balance, err := b.computed(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.Equal(acc.Balance) {
		b.log.WarnContext(ctx, "stored balance drifted, rewriting",
			log.FieldAccountID, accountID.String(),
			log.FieldExpected, balance.String(),
			log.FieldActual, acc.Balance.String())
	}
	if err := b.write(ctx, tx, accountID, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// BalanceCheck compares the stored balance with a fresh computation.
type BalanceCheck struct {
	AccountID uuid.UUID       `json:"account_id"`
	Stored    decimal.Decimal `json:"stored"`
	Computed  decimal.Decimal `json:"computed"`
}

func (c BalanceCheck) Consistent() bool {
	return c.Stored.Equal(c.Computed)
}

// Verify reports a mismatch between stored and recomputed balance as
// ErrIntegrity without writing anything.
func (b *BalanceMaintainer) Verify(ctx context.Context, accountID uuid.UUID) (BalanceCheck, error) {
	var acc models.Account
	if err := b.db.WithContext(ctx).First(&acc, "id = ?", accountID).Error; err != nil {
		return BalanceCheck{}, lookup(err, "account")
	}
	computed, err := b.computed(ctx, b.db, accountID)
	if err != nil {
		return BalanceCheck{}, err
	}
	check := BalanceCheck{AccountID: accountID, Stored: acc.Balance, Computed: computed}
	if !check.Consistent() {
		b.log.ErrorContext(ctx, "balance mismatch",
			log.FieldOperation, log.OpVerify,
			log.FieldAccountID, accountID.String(),
			log.FieldExpected, computed.String(),
			log.FieldActual, acc.Balance.String())
		return check, fmt.Errorf("%w: account %s stores %s but entries sum to %s",
			ErrIntegrity, accountID, acc.Balance, computed)
	}
	return check, nil
}
