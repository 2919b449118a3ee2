package service

import (
	"context"
	"fmt"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetInput holds the editable fields of a budget.
type BudgetInput struct {
	Name       string
	CategoryID *uuid.UUID
	Amount     decimal.Decimal
	Color      string
}

// BudgetProgress is a budget evaluated over one month.
type BudgetProgress struct {
	BudgetID           uuid.UUID            `json:"budget_id"`
	BudgetName         string               `json:"budget_name"`
	CategoryID         *uuid.UUID           `json:"category_id"`
	Color              string               `json:"color"`
	BudgetAmount       decimal.Decimal      `json:"budget_amount"`
	SpentAmount        decimal.Decimal      `json:"spent_amount"`
	RemainingAmount    decimal.Decimal      `json:"remaining_amount"`
	ProgressPercentage int                  `json:"progress_percentage"`
	Status             finance.BudgetStatus `json:"status"`
	Year               int                  `json:"year"`
	Month              int                  `json:"month"`
	CurrencyDisplay
}

// BudgetSummary totals every budget of a user over one month.
type BudgetSummary struct {
	TotalBudgeted decimal.Decimal      `json:"total_budgeted"`
	TotalSpent    decimal.Decimal      `json:"total_spent"`
	Remaining     decimal.Decimal      `json:"remaining"`
	Percentage    int                  `json:"percentage"`
	Status        finance.BudgetStatus `json:"status"`
	BudgetCount   int                  `json:"budget_count"`
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	CurrencyDisplay
}

// BudgetService computes budget progress at read time; nothing derived is
// stored on budgets.
type BudgetService struct {
	db       *gorm.DB
	currency *CurrencyResolver
	log      *log.Logger
}

func NewBudgetService(db *gorm.DB, currency *CurrencyResolver, logger *log.Logger) *BudgetService {
	return &BudgetService{db: db, currency: currency, log: logger.WithComponent(log.ComponentBudget)}
}

// spent totals the user's active expenses per category inside w. Only the
// given categories are loaded.
func (s *BudgetService) spent(ctx context.Context, userID uuid.UUID, w finance.Window, categoryIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if len(categoryIDs) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	start, end := w.Bounds()
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Select("id", "amount", "type", "date", "is_active", "category_id").
		Scopes(ownedBy(userID)).
		Where("type = ? AND is_active = ?", models.TransactionExpense, true).
		Where("category_id IN ?", categoryIDs).
		Where("date >= ? AND date < ?", start, end).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("load expenses for %s: %w", w, err)
	}
	return finance.SpentByCategory(txs, w), nil
}

func (s *BudgetService) progressOf(b *models.Budget, spent map[uuid.UUID]decimal.Decimal, w finance.Window, cur CurrencyDisplay) BudgetProgress {
	amount := decimal.Zero
	if b.CategoryID != nil {
		amount = spent[*b.CategoryID]
	}
	p := finance.ComputeProgress(b.Amount, amount)
	return BudgetProgress{
		BudgetID:           b.ID,
		BudgetName:         b.Name,
		CategoryID:         b.CategoryID,
		Color:              b.Color,
		BudgetAmount:       b.Amount,
		SpentAmount:        p.Spent,
		RemainingAmount:    p.Remaining,
		ProgressPercentage: p.Percentage,
		Status:             p.Status(),
		Year:               w.Year,
		Month:              int(w.Month),
		CurrencyDisplay:    cur,
	}
}

// Progress evaluates one budget. It returns nil without error when the
// budget has no category.
func (s *BudgetService) Progress(ctx context.Context, userID, budgetID uuid.UUID, w finance.Window) (*BudgetProgress, error) {
	var b models.Budget
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&b, "id = ?", budgetID).Error; err != nil {
		return nil, lookup(err, "budget")
	}
	if b.CategoryID == nil {
		return nil, nil
	}
	spent, err := s.spent(ctx, userID, w, []uuid.UUID{*b.CategoryID})
	if err != nil {
		return nil, err
	}
	cur, err := s.currency.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := s.progressOf(&b, spent, w, cur)
	return &p, nil
}

// AllProgress evaluates every budget of the user with a single expense scan.
func (s *BudgetService) AllProgress(ctx context.Context, userID uuid.UUID, w finance.Window) ([]BudgetProgress, error) {
	budgets, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent, err := s.spent(ctx, userID, w, budgetCategories(budgets))
	if err != nil {
		return nil, err
	}
	cur, err := s.currency.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]BudgetProgress, 0, len(budgets))
	for i := range budgets {
		out = append(out, s.progressOf(&budgets[i], spent, w, cur))
	}
	return out, nil
}

// Summary totals all budgets against the spend of their distinct categories.
func (s *BudgetService) Summary(ctx context.Context, userID uuid.UUID, w finance.Window) (*BudgetSummary, error) {
	budgets, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	spent, err := s.spent(ctx, userID, w, budgetCategories(budgets))
	if err != nil {
		return nil, err
	}
	cur, err := s.currency.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := finance.Summarize(budgets, spent)
	s.log.DebugContext(ctx, "budget summary computed",
		log.FieldUserID, userID.String(),
		log.FieldWindow, w.String(),
		log.FieldCount, len(budgets))
	return &BudgetSummary{
		TotalBudgeted:   p.Budgeted,
		TotalSpent:      p.Spent,
		Remaining:       p.Remaining,
		Percentage:      p.Percentage,
		Status:          p.Status(),
		BudgetCount:     len(budgets),
		Year:            w.Year,
		Month:           int(w.Month),
		CurrencyDisplay: cur,
	}, nil
}

func budgetCategories(budgets []models.Budget) []uuid.UUID {
	ptrs := make([]*uuid.UUID, 0, len(budgets))
	for i := range budgets {
		ptrs = append(ptrs, budgets[i].CategoryID)
	}
	return uuidSet(ptrs...)
}

func (s *BudgetService) validate(ctx context.Context, userID uuid.UUID, in BudgetInput) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Amount.IsNegative() {
		return invalid("amount must not be negative")
	}
	if in.CategoryID != nil {
		return exists(s.db.WithContext(ctx).Scopes(ownedBy(userID)), &models.Category{}, *in.CategoryID, "category")
	}
	return nil
}

// List returns the user's budgets, newest first.
func (s *BudgetService) List(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("created_at DESC").Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	var b models.Budget
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&b, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "budget")
	}
	return &b, nil
}

func (s *BudgetService) Create(ctx context.Context, userID uuid.UUID, in BudgetInput) (*models.Budget, error) {
	if err := s.validate(ctx, userID, in); err != nil {
		return nil, err
	}
	b := &models.Budget{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Amount:     in.Amount,
		Color:      in.Color,
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Update(ctx context.Context, userID, id uuid.UUID, in BudgetInput) (*models.Budget, error) {
	if err := s.validate(ctx, userID, in); err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	b.Name = in.Name
	b.CategoryID = in.CategoryID
	b.Amount = in.Amount
	b.Color = in.Color
	err = s.db.WithContext(ctx).Model(b).
		Select("name", "category_id", "amount", "color", "updated_at").
		Updates(b).Error
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Delete(&models.Budget{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete budget: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("budget")
	}
	return nil
}
