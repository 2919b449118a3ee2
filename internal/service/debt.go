package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/finance"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtInput holds the user-editable fields of a debt. Amount is only read on
// create.
type DebtInput struct {
	Name              string
	Description       string
	Type              models.DebtType
	Status            models.DebtStatus
	Amount            decimal.Decimal
	InterestRate      decimal.Decimal
	DueDate           *time.Time
	CurrencyID        *uuid.UUID
	AccountID         *uuid.UUID
	PaymentMethodID   *uuid.UUID
	IsInstallment     bool
	TotalInstallments int
}

// PaymentInput describes one payment towards a debt.
type PaymentInput struct {
	Amount      decimal.Decimal
	Description string
	Date        *time.Time
}

// DebtDetail is a debt with its linked payments.
type DebtDetail struct {
	models.Debt
	Payments []models.Transaction `json:"payments"`
}

// DebtService owns debt records and is the only writer of their derived
// progress fields.
type DebtService struct {
	db      *gorm.DB
	balance *BalanceMaintainer
	log     *log.Logger
	now     func() time.Time
}

func NewDebtService(db *gorm.DB, balance *BalanceMaintainer, logger *log.Logger) *DebtService {
	return &DebtService{
		db:      db,
		balance: balance,
		log:     logger.WithComponent(log.ComponentDebt),
		now:     time.Now,
	}
}

var debtProgressColumns = []string{
	"paid_amount", "remaining_amount", "payment_progress", "is_paid",
	"paid_installments", "remaining_installments", "status", "updated_at",
}

// Recompute rescans every active entry linked to the debt and overwrites the
// derived fields. tx must be open.
func (s *DebtService) Recompute(ctx context.Context, tx *gorm.DB, debtID uuid.UUID) (finance.DebtProgress, error) {
	var debt models.Debt
	if err := database.ForUpdate(tx.WithContext(ctx)).First(&debt, "id = ?", debtID).Error; err != nil {
		return finance.DebtProgress{}, lookup(err, "debt")
	}

	var amounts []decimal.Decimal
	err := tx.WithContext(ctx).Model(&models.Transaction{}).
		Where("debt_id = ? AND is_active = ?", debtID, true).
		Pluck("amount", &amounts).Error
	if err != nil {
		return finance.DebtProgress{}, fmt.Errorf("load debt payments: %w", err)
	}

	progress := finance.ComputeDebtProgress(&debt, amounts)
	progress.Apply(&debt)
	err = tx.WithContext(ctx).Model(&debt).Select(debtProgressColumns).Updates(&debt).Error
	if err != nil {
		s.log.ErrorContext(ctx, "debt progress write failed",
			log.FieldDebtID, debtID.String(), log.FieldError, err.Error())
		return finance.DebtProgress{}, fmt.Errorf("%w: update debt %s: %v", ErrIntegrity, debtID, err)
	}
	s.log.DebugContext(ctx, "debt recomputed",
		log.FieldOperation, log.OpRecompute,
		log.FieldDebtID, debtID.String(),
		log.FieldCount, len(amounts),
		"progress", progress.PaymentProgress)
	return progress, nil
}

// AddPayment books an expense entry against the debt, inheriting its
// currency, account and payment method, and recomputes the debt.
func (s *DebtService) AddPayment(ctx context.Context, userID, debtID uuid.UUID, in PaymentInput) (*models.Debt, *models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, invalid("payment amount must be greater than zero")
	}

	var (
		debt  models.Debt
		entry *models.Transaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).First(&debt, "id = ?", debtID).Error; err != nil {
			return lookup(err, "debt")
		}

		date := today(s.now())
		if in.Date != nil {
			date = in.Date.UTC()
		}
		desc := in.Description
		if desc == "" {
			desc = "Payment for " + debt.Name
		}
		currencyID, err := s.currencyFor(tx, userID, &debt)
		if err != nil {
			return err
		}

		debtRef := debt.ID
		entry = &models.Transaction{
			UserID:          userID,
			Amount:          in.Amount,
			Type:            models.TransactionExpense,
			Date:            date,
			Description:     desc,
			IsActive:        true,
			AccountID:       debt.AccountID,
			DebtID:          &debtRef,
			PaymentMethodID: debt.PaymentMethodID,
			CurrencyID:      currencyID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := s.balance.Apply(ctx, tx, entry); err != nil {
			return err
		}
		if _, err := s.Recompute(ctx, tx, debt.ID); err != nil {
			return err
		}
		return tx.First(&debt, "id = ?", debt.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.InfoContext(ctx, "debt payment added",
		log.FieldOperation, log.OpCreate,
		log.FieldDebtID, debtID.String(),
		log.FieldEntryID, entry.ID.String(),
		log.FieldUserID, userID.String())
	return &debt, entry, nil
}

func (s *DebtService) currencyFor(tx *gorm.DB, userID uuid.UUID, debt *models.Debt) (*uuid.UUID, error) {
	if debt.CurrencyID != nil {
		return debt.CurrencyID, nil
	}
	if debt.AccountID != nil {
		var acc models.Account
		if err := tx.Select("id", "currency_id").First(&acc, "id = ?", *debt.AccountID).Error; err == nil {
			return &acc.CurrencyID, nil
		}
	}
	var user models.User
	if err := tx.Select("id", "default_currency_id").First(&user, "id = ?", userID).Error; err != nil {
		return nil, lookup(err, "user")
	}
	if user.DefaultCurrencyID == nil {
		return nil, invalid("debt has no currency and the user has no default currency")
	}
	return user.DefaultCurrencyID, nil
}

func (s *DebtService) validate(ctx context.Context, userID uuid.UUID, in *DebtInput, create bool) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Type == "" {
		in.Type = models.DebtOther
	}
	if !in.Type.Valid() {
		return invalid("unknown debt type %q", in.Type)
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("unknown debt status %q", in.Status)
	}
	if create && !in.Amount.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	if in.InterestRate.IsNegative() {
		return invalid("interest rate must not be negative")
	}
	if in.IsInstallment && in.TotalInstallments <= 0 {
		return invalid("installment debts need a positive number of installments")
	}
	db := s.db.WithContext(ctx)
	if in.AccountID != nil {
		if err := exists(db.Scopes(ownedBy(userID)), &models.Account{}, *in.AccountID, "account"); err != nil {
			return err
		}
	}
	if in.PaymentMethodID != nil {
		if err := exists(db.Scopes(ownedBy(userID)), &models.PaymentMethod{}, *in.PaymentMethodID, "payment method"); err != nil {
			return err
		}
	}
	if in.CurrencyID != nil {
		if err := exists(db, &models.Currency{}, *in.CurrencyID, "currency"); err != nil {
			return err
		}
	}
	return nil
}

// Create stores a new debt with no payments.
func (s *DebtService) Create(ctx context.Context, userID uuid.UUID, in DebtInput) (*models.Debt, error) {
	if err := s.validate(ctx, userID, &in, true); err != nil {
		return nil, err
	}
	debt := &models.Debt{
		UserID:          userID,
		Name:            in.Name,
		Description:     in.Description,
		Type:            in.Type,
		Status:          models.DebtPending,
		Amount:          in.Amount,
		InterestRate:    in.InterestRate,
		DueDate:         in.DueDate,
		CurrencyID:      in.CurrencyID,
		AccountID:       in.AccountID,
		PaymentMethodID: in.PaymentMethodID,
		IsInstallment:   in.IsInstallment,
	}
	if in.Status != "" {
		debt.Status = in.Status
	}
	if in.IsInstallment {
		debt.TotalInstallments = in.TotalInstallments
	}
	progress := finance.ComputeDebtProgress(debt, nil)
	progress.Apply(debt)

	if err := s.db.WithContext(ctx).Create(debt).Error; err != nil {
		return nil, fmt.Errorf("create debt: %w", err)
	}
	return debt, nil
}

// Update changes the descriptive fields and recomputes progress, since the
// installment plan may have changed. The principal is never modified.
func (s *DebtService) Update(ctx context.Context, userID, id uuid.UUID, in DebtInput) (*models.Debt, error) {
	if err := s.validate(ctx, userID, &in, false); err != nil {
		return nil, err
	}
	var debt models.Debt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).First(&debt, "id = ?", id).Error; err != nil {
			return lookup(err, "debt")
		}
		debt.Name = in.Name
		debt.Description = in.Description
		debt.Type = in.Type
		if in.Status != "" {
			debt.Status = in.Status
		}
		debt.InterestRate = in.InterestRate
		debt.DueDate = in.DueDate
		debt.CurrencyID = in.CurrencyID
		debt.AccountID = in.AccountID
		debt.PaymentMethodID = in.PaymentMethodID
		debt.IsInstallment = in.IsInstallment
		debt.TotalInstallments = 0
		if in.IsInstallment {
			debt.TotalInstallments = in.TotalInstallments
		}
		err := tx.Model(&debt).Select("name", "description", "type", "status", "interest_rate",
			"due_date", "currency_id", "account_id", "payment_method_id",
			"is_installment", "total_installments", "updated_at").Updates(&debt).Error
		if err != nil {
			return fmt.Errorf("update debt: %w", err)
		}
		if _, err := s.Recompute(ctx, tx, id); err != nil {
			return err
		}
		return tx.First(&debt, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

// Delete removes a debt that has no linked entries.
func (s *DebtService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var debt models.Debt
		if err := tx.Scopes(ownedBy(userID)).First(&debt, "id = ?", id).Error; err != nil {
			return lookup(err, "debt")
		}
		var linked int64
		if err := tx.Model(&models.Transaction{}).Where("debt_id = ?", id).Count(&linked).Error; err != nil {
			return fmt.Errorf("count debt payments: %w", err)
		}
		if linked > 0 {
			return conflict("debt has %d linked transactions", linked)
		}
		if err := tx.Delete(&models.Debt{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete debt: %w", err)
		}
		return nil
	})
}

// Get returns a debt with its payments, newest first.
func (s *DebtService) Get(ctx context.Context, userID, id uuid.UUID) (*DebtDetail, error) {
	var detail DebtDetail
	db := s.db.WithContext(ctx)
	if err := db.Scopes(ownedBy(userID)).First(&detail.Debt, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "debt")
	}
	err := db.Where("debt_id = ?", id).Order("date DESC").Order("created_at DESC").Find(&detail.Payments).Error
	if err != nil {
		return nil, fmt.Errorf("load debt payments: %w", err)
	}
	return &detail, nil
}

// List returns the user's debts, optionally filtered by status.
func (s *DebtService) List(ctx context.Context, userID uuid.UUID, status models.DebtStatus) ([]models.Debt, error) {
	q := s.db.WithContext(ctx).Scopes(ownedBy(userID))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var debts []models.Debt
	if err := q.Order("created_at DESC").Find(&debts).Error; err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}
