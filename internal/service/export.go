package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExportRow is one ledger entry with its references resolved to names.
type ExportRow struct {
	Date          time.Time
	Type          models.TransactionType
	Amount        decimal.Decimal
	Currency      string
	Account       string
	Destination   string
	Category      string
	PaymentMethod string
	Debt          string
	Description   string
	Active        bool
}

// ExportService flattens a user's ledger for file downloads.
type ExportService struct {
	db  *gorm.DB
	log *log.Logger
}

func NewExportService(db *gorm.DB, logger *log.Logger) *ExportService {
	return &ExportService{db: db, log: logger.WithComponent(log.ComponentExport)}
}

// names loads id -> column for the user's rows of model.
func names(db *gorm.DB, model any, column string, userID *uuid.UUID) (map[uuid.UUID]string, error) {
	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	q := db.Model(model).Select("id", column+" AS name")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}

func lookupName(m map[uuid.UUID]string, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return m[*id]
}

// Rows returns the user's entries in [from, to), newest first. Nil bounds
// are open.
func (s *ExportService) Rows(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]ExportRow, error) {
	db := s.db.WithContext(ctx)
	q := db.Scopes(ownedBy(userID))
	if from != nil {
		q = q.Where("date >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("date < ?", to.UTC())
	}
	var txs []models.Transaction
	if err := q.Order("date DESC").Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	accounts, err := names(db, &models.Account{}, "name", &userID)
	if err != nil {
		return nil, fmt.Errorf("load account names: %w", err)
	}
	categories, err := names(db, &models.Category{}, "name", &userID)
	if err != nil {
		return nil, fmt.Errorf("load category names: %w", err)
	}
	methods, err := names(db, &models.PaymentMethod{}, "name", &userID)
	if err != nil {
		return nil, fmt.Errorf("load payment method names: %w", err)
	}
	debts, err := names(db, &models.Debt{}, "name", &userID)
	if err != nil {
		return nil, fmt.Errorf("load debt names: %w", err)
	}
	currencies, err := names(db, &models.Currency{}, "code", nil)
	if err != nil {
		return nil, fmt.Errorf("load currency codes: %w", err)
	}

	rows := make([]ExportRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, ExportRow{
			Date:          t.Date.UTC(),
			Type:          t.Type,
			Amount:        t.Amount,
			Currency:      lookupName(currencies, t.CurrencyID),
			Account:       lookupName(accounts, t.AccountID),
			Destination:   lookupName(accounts, t.DestinationAccountID),
			Category:      lookupName(categories, t.CategoryID),
			PaymentMethod: lookupName(methods, t.PaymentMethodID),
			Debt:          lookupName(debts, t.DebtID),
			Description:   t.Description,
			Active:        t.IsActive,
		})
	}
	s.log.InfoContext(ctx, "ledger exported",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID.String(),
		log.FieldCount, len(rows))
	return rows, nil
}
