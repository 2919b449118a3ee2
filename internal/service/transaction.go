package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionInput is the writable part of a ledger entry. Update replaces
// every field.
type TransactionInput struct {
	Type                 models.TransactionType
	Amount               decimal.Decimal
	Date                 *time.Time
	Description          string
	IsActive             *bool
	AccountID            *uuid.UUID
	DestinationAccountID *uuid.UUID
	CategoryID           *uuid.UUID
	DebtID               *uuid.UUID
	PaymentMethodID      *uuid.UUID
	CurrencyID           *uuid.UUID
}

// TransactionFilter narrows List. Zero values mean no filter.
type TransactionFilter struct {
	Type         models.TransactionType
	CategoryID   *uuid.UUID
	CategoryName string
	AccountID    *uuid.UUID
	DebtID       *uuid.UUID
	From         *time.Time
	To           *time.Time // exclusive
	Page         int
	PageSize     int
}

// TransactionPage is one page of List results.
type TransactionPage struct {
	Items    []models.Transaction `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Pages    int                  `json:"pages"`
}

// TransactionService persists ledger entries and keeps account balances and
// debt progress in step within the same database transaction.
type TransactionService struct {
	db      *gorm.DB
	balance *BalanceMaintainer
	debts   *DebtService
	log     *log.Logger
	now     func() time.Time
}

func NewTransactionService(db *gorm.DB, balance *BalanceMaintainer, debts *DebtService, logger *log.Logger) *TransactionService {
	return &TransactionService{
		db:      db,
		balance: balance,
		debts:   debts,
		log:     logger.WithComponent(log.ComponentLedger),
		now:     time.Now,
	}
}

// Create validates and stores a new entry, then applies its balance effect
// and recomputes its debt.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	var created *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.build(ctx, tx, userID, in)
		if err != nil {
			return err
		}
		if err := s.insert(ctx, tx, t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldEntryID, created.ID.String(),
		log.FieldUserID, userID.String())
	return created, nil
}

// insert writes t and runs the derived-state updates. tx must be open.
func (s *TransactionService) insert(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return s.afterWrite(ctx, tx, t, nil)
}

// Update replaces an entry. The old version is reversed and the new one
// applied; when the debt link changes both debts are recomputed. A missing
// date or active flag keeps the stored value.
func (s *TransactionService) Update(ctx context.Context, userID, id uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	var updated *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous models.Transaction
		if err := tx.Scopes(ownedBy(userID)).First(&previous, "id = ?", id).Error; err != nil {
			return lookup(err, "transaction")
		}
		next, err := s.build(ctx, tx, userID, in)
		if err != nil {
			return err
		}
		next.Base = previous.Base
		if in.Date == nil {
			next.Date = previous.Date
		}
		if in.IsActive == nil {
			next.IsActive = previous.IsActive
		}

		err = tx.Model(&models.Transaction{}).Where("id = ?", id).
			Select("amount", "type", "date", "description", "is_active",
				"account_id", "destination_account_id", "category_id",
				"debt_id", "payment_method_id", "currency_id", "updated_at").
			Updates(next).Error
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := s.afterWrite(ctx, tx, next, &previous); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "transaction updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldEntryID, id.String(),
		log.FieldUserID, userID.String())
	return updated, nil
}

// Delete removes an entry and undoes its effects using the ids captured
// before the row is gone.
func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous models.Transaction
		if err := tx.Scopes(ownedBy(userID)).First(&previous, "id = ?", id).Error; err != nil {
			return lookup(err, "transaction")
		}
		return s.remove(ctx, tx, &previous)
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldEntryID, id.String(),
		log.FieldUserID, userID.String())
	return nil
}

// remove deletes t inside tx and reverses it.
func (s *TransactionService) remove(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	if err := tx.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", t.ID).Error; err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.afterWrite(ctx, tx, nil, t)
}

// afterWrite runs strictly after the entry row change so the debt rescan
// sees it. Missing debts are skipped.
func (s *TransactionService) afterWrite(ctx context.Context, tx *gorm.DB, current, previous *models.Transaction) error {
	if err := s.balance.ApplyChange(ctx, tx, current, previous); err != nil {
		return err
	}
	var debtIDs []uuid.UUID
	switch {
	case current != nil && previous != nil:
		debtIDs = uuidSet(previous.DebtID, current.DebtID)
	case current != nil:
		debtIDs = uuidSet(current.DebtID)
	case previous != nil:
		debtIDs = uuidSet(previous.DebtID)
	}
	for _, debtID := range debtIDs {
		if _, err := s.debts.Recompute(ctx, tx, debtID); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.log.WarnContext(ctx, "debt missing, recompute skipped", log.FieldDebtID, debtID.String())
				continue
			}
			return err
		}
	}
	return nil
}

// build validates in and resolves defaults into a new entry for userID.
func (s *TransactionService) build(ctx context.Context, tx *gorm.DB, userID uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	if !in.Type.Valid() {
		return nil, invalid("unknown transaction type %q", in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	if in.Type == models.TransactionTransfer {
		if in.AccountID == nil || in.DestinationAccountID == nil {
			return nil, invalid("transfer requires source and destination accounts")
		}
		if *in.AccountID == *in.DestinationAccountID {
			return nil, invalid("transfer source and destination must differ")
		}
	} else if in.DestinationAccountID != nil {
		return nil, invalid("only transfers may have a destination account")
	}

	t := &models.Transaction{
		UserID:               userID,
		Amount:               in.Amount,
		Type:                 in.Type,
		Description:          in.Description,
		IsActive:             true,
		AccountID:            in.AccountID,
		DestinationAccountID: in.DestinationAccountID,
		CategoryID:           in.CategoryID,
		DebtID:               in.DebtID,
		PaymentMethodID:      in.PaymentMethodID,
		CurrencyID:           in.CurrencyID,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.Date != nil {
		t.Date = in.Date.UTC()
	} else {
		t.Date = today(s.now())
	}

	db := tx.WithContext(ctx)
	var source *models.Account
	for _, ref := range []struct {
		id   *uuid.UUID
		what string
	}{
		{in.AccountID, "account"},
		{in.DestinationAccountID, "destination account"},
	} {
		if ref.id == nil {
			continue
		}
		var acc models.Account
		if err := db.Scopes(ownedBy(userID)).First(&acc, "id = ?", *ref.id).Error; err != nil {
			return nil, lookup(err, ref.what)
		}
		if source == nil {
			source = &acc
		}
	}
	if in.CategoryID != nil {
		if err := exists(db.Scopes(ownedBy(userID)), &models.Category{}, *in.CategoryID, "category"); err != nil {
			return nil, err
		}
	}
	var debt *models.Debt
	if in.DebtID != nil {
		var d models.Debt
		if err := db.Scopes(ownedBy(userID)).Select("id", "currency_id").First(&d, "id = ?", *in.DebtID).Error; err != nil {
			return nil, lookup(err, "debt")
		}
		debt = &d
	}
	if in.PaymentMethodID != nil {
		if err := exists(db.Scopes(ownedBy(userID)), &models.PaymentMethod{}, *in.PaymentMethodID, "payment method"); err != nil {
			return nil, err
		}
	}
	if t.CurrencyID != nil {
		if err := exists(db, &models.Currency{}, *t.CurrencyID, "currency"); err != nil {
			return nil, err
		}
	} else if source != nil {
		id := source.CurrencyID
		t.CurrencyID = &id
	} else if debt != nil && debt.CurrencyID != nil {
		t.CurrencyID = debt.CurrencyID
	} else {
		var user models.User
		if err := db.Select("id", "default_currency_id").First(&user, "id = ?", userID).Error; err != nil {
			return nil, lookup(err, "user")
		}
		if user.DefaultCurrencyID == nil {
			return nil, invalid("currency is required")
		}
		t.CurrencyID = user.DefaultCurrencyID
	}
	return t, nil
}

// exists checks that a row with id is visible through db.
func exists(db *gorm.DB, model any, id uuid.UUID, what string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s: %w", what, err)
	}
	if count == 0 {
		return notFound(what)
	}
	return nil
}

// Get returns one entry of the user.
func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&t, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "transaction")
	}
	return &t, nil
}

// List returns the user's entries, newest first.
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, f TransactionFilter) (*TransactionPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Scopes(ownedBy(userID))
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.CategoryName != "" {
		sub := s.db.Model(&models.Category{}).Select("id").
			Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, f.CategoryName)
		q = q.Where("category_id IN (?)", sub)
	}
	if f.AccountID != nil {
		q = q.Where("(account_id = ? OR destination_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.DebtID != nil {
		q = q.Where("debt_id = ?", *f.DebtID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date < ?", f.To.UTC())
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	page := &TransactionPage{Total: total, Page: f.Page, PageSize: f.PageSize}
	page.Pages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))

	err := q.Order("date DESC").Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&page.Items).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return page, nil
}
