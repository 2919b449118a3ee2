package service

import (
	"context"
	"fmt"
	"strings"

	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountInput holds the editable fields of an account. OpeningBalance is
// only read on create and is booked as an income entry so the balance stays
// a pure function of the ledger.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	CurrencyID     uuid.UUID
	Institution    string
	Icon           string
	Color          string
	IsDefault      bool
	OpeningBalance decimal.Decimal
}

// AccountDetail adds the active entry count to an account.
type AccountDetail struct {
	models.Account
	TransactionCount int64           `json:"transaction_count"`
	Currency         *models.Currency `json:"currency,omitempty"`
}

type AccountService struct {
	db      *gorm.DB
	balance *BalanceMaintainer
	txs     *TransactionService
	log     *log.Logger
}

func NewAccountService(db *gorm.DB, balance *BalanceMaintainer, txs *TransactionService, logger *log.Logger) *AccountService {
	return &AccountService{db: db, balance: balance, txs: txs, log: logger.WithComponent(log.ComponentLedger)}
}

func (s *AccountService) validate(tx *gorm.DB, userID uuid.UUID, in *AccountInput, exceptID *uuid.UUID) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Type == "" {
		in.Type = models.AccountOther
	}
	if !in.Type.Valid() {
		return invalid("unknown account type %q", in.Type)
	}
	if in.CurrencyID == uuid.Nil {
		return invalid("currency is required")
	}
	if err := exists(tx, &models.Currency{}, in.CurrencyID, "currency"); err != nil {
		return err
	}
	q := tx.Model(&models.Account{}).Scopes(ownedBy(userID)).Where("LOWER(name) = LOWER(?)", in.Name)
	if exceptID != nil {
		q = q.Where("id <> ?", *exceptID)
	}
	var dup int64
	if err := q.Count(&dup).Error; err != nil {
		return fmt.Errorf("check account name: %w", err)
	}
	if dup > 0 {
		return conflict("account with this name already exists")
	}
	return nil
}

// unsetDefault clears the default flag on every other account of the user.
func unsetDefault(tx *gorm.DB, userID uuid.UUID, keep uuid.UUID) error {
	err := tx.Model(&models.Account{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keep, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("unset default account: %w", err)
	}
	return nil
}

// Create stores an account with a zero balance and books the opening
// balance, if any.
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, in AccountInput) (*models.Account, error) {
	if in.OpeningBalance.IsNegative() {
		return nil, invalid("opening balance must not be negative")
	}
	acc := &models.Account{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, userID, &in, nil); err != nil {
			return err
		}
		*acc = models.Account{
			UserID:      userID,
			CurrencyID:  in.CurrencyID,
			Name:        in.Name,
			Type:        in.Type,
			Institution: in.Institution,
			Icon:        in.Icon,
			Color:       in.Color,
			Balance:     decimal.Zero,
			IsDefault:   in.IsDefault,
		}
		if err := tx.Create(acc).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if acc.IsDefault {
			if err := unsetDefault(tx, userID, acc.ID); err != nil {
				return err
			}
		}
		if in.OpeningBalance.IsPositive() {
			id, cur := acc.ID, acc.CurrencyID
			opening := &models.Transaction{
				UserID:      userID,
				Amount:      in.OpeningBalance,
				Type:        models.TransactionIncome,
				Date:        today(s.txs.now()),
				Description: "Opening balance",
				IsActive:    true,
				AccountID:   &id,
				CurrencyID:  &cur,
			}
			if err := s.txs.insert(ctx, tx, opening); err != nil {
				return err
			}
		}
		return tx.First(acc, "id = ?", acc.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "account created",
		log.FieldOperation, log.OpCreate,
		log.FieldAccountID, acc.ID.String(),
		log.FieldUserID, userID.String())
	return acc, nil
}

// Update changes descriptive fields. The balance is never written here.
func (s *AccountService) Update(ctx context.Context, userID, id uuid.UUID, in AccountInput) (*models.Account, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).First(&acc, "id = ?", id).Error; err != nil {
			return lookup(err, "account")
		}
		if err := s.validate(tx, userID, &in, &id); err != nil {
			return err
		}
		if in.CurrencyID != acc.CurrencyID {
			var used int64
			err := tx.Model(&models.Transaction{}).
				Where("account_id = ? OR destination_account_id = ?", id, id).
				Count(&used).Error
			if err != nil {
				return fmt.Errorf("count account entries: %w", err)
			}
			if used > 0 {
				return conflict("cannot change the currency of an account with transactions")
			}
		}
		acc.Name = in.Name
		acc.Type = in.Type
		acc.CurrencyID = in.CurrencyID
		acc.Institution = in.Institution
		acc.Icon = in.Icon
		acc.Color = in.Color
		acc.IsDefault = in.IsDefault
		err := tx.Model(&acc).
			Select("name", "type", "currency_id", "institution", "icon", "color", "is_default", "updated_at").
			Updates(&acc).Error
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		if acc.IsDefault {
			return unsetDefault(tx, userID, acc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Delete removes an account together with every entry touching it. Entries
// are reversed first so the other side of a transfer gets its money back
// and linked debts are recomputed. Accounts referenced by debts or
// subscriptions cannot be deleted.
func (s *AccountService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		if err := tx.Scopes(ownedBy(userID)).First(&acc, "id = ?", id).Error; err != nil {
			return lookup(err, "account")
		}
		for _, dep := range []struct {
			model any
			what  string
		}{
			{&models.Debt{}, "debts"},
			{&models.Subscription{}, "subscriptions"},
		} {
			var n int64
			if err := tx.Model(dep.model).Where("account_id = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("count %s: %w", dep.what, err)
			}
			if n > 0 {
				return conflict("account is used by %d %s", n, dep.what)
			}
		}

		var entries []models.Transaction
		err := tx.Where("account_id = ? OR destination_account_id = ?", id, id).Find(&entries).Error
		if err != nil {
			return fmt.Errorf("load account entries: %w", err)
		}
		for i := range entries {
			if err := s.txs.remove(ctx, tx, &entries[i]); err != nil {
				return err
			}
		}
		removed = len(entries)

		if err := tx.Delete(&models.Account{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "account deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldAccountID, id.String(),
		log.FieldCount, removed)
	return nil
}

// Get returns one account with its entry count and currency.
func (s *AccountService) Get(ctx context.Context, userID, id uuid.UUID) (*AccountDetail, error) {
	var detail AccountDetail
	db := s.db.WithContext(ctx)
	if err := db.Scopes(ownedBy(userID)).First(&detail.Account, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "account")
	}
	count, err := s.TransactionCount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	detail.TransactionCount = count
	var cur models.Currency
	if err := db.First(&cur, "id = ?", detail.CurrencyID).Error; err == nil {
		detail.Currency = &cur
	}
	return &detail, nil
}

// List returns the user's accounts with the default one first.
func (s *AccountService) List(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).
		Order("is_default DESC").Order("name ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// TransactionCount counts active entries booked on the account as source.
func (s *AccountService) TransactionCount(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Scopes(ownedBy(userID)).
		Where("account_id = ? AND is_active = ?", id, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count account entries: %w", err)
	}
	return n, nil
}

// Recompute rebuilds the stored balance from the ledger.
func (s *AccountService) Recompute(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).First(&acc, "id = ?", id).Error; err != nil {
			return lookup(err, "account")
		}
		balance, err := s.balance.Recompute(ctx, tx, id)
		if err != nil {
			return err
		}
		acc.Balance = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Verify compares the stored balance with a fresh computation.
func (s *AccountService) Verify(ctx context.Context, userID, id uuid.UUID) (BalanceCheck, error) {
	if err := exists(s.db.WithContext(ctx).Scopes(ownedBy(userID)), &models.Account{}, id, "account"); err != nil {
		return BalanceCheck{}, err
	}
	return s.balance.Verify(ctx, id)
}
