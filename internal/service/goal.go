package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/finance"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GoalInput struct {
	Name          string
	Type          models.GoalType
	Status        models.GoalStatus
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	CurrencyID    *uuid.UUID
}

// GoalView is a goal with its completion percentage.
type GoalView struct {
	models.FinancialGoal
	ProgressPercentage int `json:"progress_percentage"`
}

func newGoalView(g models.FinancialGoal) GoalView {
	return GoalView{FinancialGoal: g, ProgressPercentage: finance.GoalProgress(g.CurrentAmount, g.TargetAmount)}
}

type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

func (s *GoalService) validate(ctx context.Context, in *GoalInput) error {
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Type == "" {
		in.Type = models.GoalSavings
	}
	if !in.Type.Valid() {
		return invalid("unknown goal type %q", in.Type)
	}
	if in.Status == "" {
		in.Status = models.GoalActive
	}
	if !in.Status.Valid() {
		return invalid("unknown goal status %q", in.Status)
	}
	if !in.TargetAmount.IsPositive() {
		return invalid("target amount must be greater than zero")
	}
	if in.CurrentAmount.IsNegative() {
		return invalid("current amount must not be negative")
	}
	if in.CurrencyID != nil {
		return exists(s.db.WithContext(ctx), &models.Currency{}, *in.CurrencyID, "currency")
	}
	return nil
}

func (s *GoalService) Create(ctx context.Context, userID uuid.UUID, in GoalInput) (*GoalView, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	g := models.FinancialGoal{
		UserID:        userID,
		Name:          in.Name,
		Type:          in.Type,
		Status:        in.Status,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		CurrencyID:    in.CurrencyID,
	}
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = models.GoalCompleted
	}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	v := newGoalView(g)
	return &v, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id uuid.UUID, in GoalInput) (*GoalView, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	var g models.FinancialGoal
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&g, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "goal")
	}
	g.Name = in.Name
	g.Type = in.Type
	g.Status = in.Status
	g.TargetAmount = in.TargetAmount
	g.CurrentAmount = in.CurrentAmount
	g.Deadline = in.Deadline
	g.CurrencyID = in.CurrencyID
	err := s.db.WithContext(ctx).Model(&g).
		Select("name", "type", "status", "target_amount", "current_amount", "deadline", "currency_id", "updated_at").
		Updates(&g).Error
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	v := newGoalView(g)
	return &v, nil
}

// AddSaving adds amount to the goal and completes it once the target is
// reached.
func (s *GoalService) AddSaving(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*GoalView, error) {
	if !amount.IsPositive() {
		return nil, invalid("saving amount must be greater than zero")
	}
	var g models.FinancialGoal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx.Scopes(ownedBy(userID))).First(&g, "id = ?", id).Error; err != nil {
			return lookup(err, "goal")
		}
		g.CurrentAmount = g.CurrentAmount.Add(amount)
		switch {
		case g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount):
			g.Status = models.GoalCompleted
		case g.Status == models.GoalActive:
			g.Status = models.GoalInProgress
		}
		return tx.Model(&g).Select("current_amount", "status", "updated_at").Updates(&g).Error
	})
	if err != nil {
		return nil, err
	}
	v := newGoalView(g)
	return &v, nil
}

func (s *GoalService) Get(ctx context.Context, userID, id uuid.UUID) (*GoalView, error) {
	var g models.FinancialGoal
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&g, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "goal")
	}
	v := newGoalView(g)
	return &v, nil
}

func (s *GoalService) List(ctx context.Context, userID uuid.UUID) ([]GoalView, error) {
	var goals []models.FinancialGoal
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalView(g))
	}
	return out, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Delete(&models.FinancialGoal{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete goal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("goal")
	}
	return nil
}
