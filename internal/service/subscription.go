package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/finance"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionInput struct {
	ServiceName     string
	Amount          decimal.Decimal
	Frequency       models.SubscriptionFrequency
	NextPaymentDate time.Time
	Status          models.SubscriptionStatus
	Icon            string
	Color           string
	AccountID       *uuid.UUID
	CurrencyID      *uuid.UUID
}

// SubscriptionView adds derived scheduling data to a subscription.
type SubscriptionView struct {
	models.Subscription
	DaysUntilPayment int             `json:"days_until_payment"`
	MonthlyCost      decimal.Decimal `json:"monthly_cost"`
}

type SubscriptionService struct {
	db  *gorm.DB
	log *log.Logger
	now func() time.Time
}

func NewSubscriptionService(db *gorm.DB, logger *log.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, log: logger.WithComponent(log.ComponentScheduler), now: time.Now}
}

func (s *SubscriptionService) view(sub models.Subscription) SubscriptionView {
	return SubscriptionView{
		Subscription:     sub,
		DaysUntilPayment: finance.DaysUntil(sub.NextPaymentDate, s.now()),
		MonthlyCost:      finance.MonthlyEquivalent(sub.Amount, sub.Frequency),
	}
}

func (s *SubscriptionService) validate(ctx context.Context, userID uuid.UUID, in *SubscriptionInput) error {
	if in.ServiceName == "" {
		return invalid("service name is required")
	}
	if !in.Amount.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	if in.Frequency == "" {
		in.Frequency = models.FrequencyMonthly
	}
	if !in.Frequency.Valid() {
		return invalid("unknown frequency %q", in.Frequency)
	}
	if in.Status == "" {
		in.Status = models.SubscriptionActive
	}
	if !in.Status.Valid() {
		return invalid("unknown subscription status %q", in.Status)
	}
	if in.NextPaymentDate.IsZero() {
		return invalid("next payment date is required")
	}
	db := s.db.WithContext(ctx)
	if in.AccountID != nil {
		if err := exists(db.Scopes(ownedBy(userID)), &models.Account{}, *in.AccountID, "account"); err != nil {
			return err
		}
	}
	if in.CurrencyID != nil {
		return exists(db, &models.Currency{}, *in.CurrencyID, "currency")
	}
	return nil
}

func (s *SubscriptionService) Create(ctx context.Context, userID uuid.UUID, in SubscriptionInput) (*SubscriptionView, error) {
	if err := s.validate(ctx, userID, &in); err != nil {
		return nil, err
	}
	sub := models.Subscription{
		UserID:          userID,
		ServiceName:     in.ServiceName,
		Amount:          in.Amount,
		Frequency:       in.Frequency,
		NextPaymentDate: in.NextPaymentDate.UTC(),
		Status:          in.Status,
		Icon:            in.Icon,
		Color:           in.Color,
		AccountID:       in.AccountID,
		CurrencyID:      in.CurrencyID,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	v := s.view(sub)
	return &v, nil
}

func (s *SubscriptionService) Update(ctx context.Context, userID, id uuid.UUID, in SubscriptionInput) (*SubscriptionView, error) {
	if err := s.validate(ctx, userID, &in); err != nil {
		return nil, err
	}
	sub, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sub.ServiceName = in.ServiceName
	sub.Amount = in.Amount
	sub.Frequency = in.Frequency
	sub.NextPaymentDate = in.NextPaymentDate.UTC()
	sub.Status = in.Status
	sub.Icon = in.Icon
	sub.Color = in.Color
	sub.AccountID = in.AccountID
	sub.CurrencyID = in.CurrencyID
	err = s.db.WithContext(ctx).Model(sub).
		Select("service_name", "amount", "frequency", "next_payment_date", "status",
			"icon", "color", "account_id", "currency_id", "updated_at").
		Updates(sub).Error
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	v := s.view(*sub)
	return &v, nil
}

func (s *SubscriptionService) load(ctx context.Context, userID, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).First(&sub, "id = ?", id).Error; err != nil {
		return nil, lookup(err, "subscription")
	}
	return &sub, nil
}

func (s *SubscriptionService) Get(ctx context.Context, userID, id uuid.UUID) (*SubscriptionView, error) {
	sub, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*sub)
	return &v, nil
}

func (s *SubscriptionService) List(ctx context.Context, userID uuid.UUID) ([]SubscriptionView, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("next_payment_date ASC").Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, s.view(sub))
	}
	return out, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Delete(&models.Subscription{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("subscription")
	}
	return nil
}

// Renew advances the next payment date by one period and reactivates a
// subscription waiting for renewal.
func (s *SubscriptionService) Renew(ctx context.Context, userID, id uuid.UUID) (*SubscriptionView, error) {
	sub, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriptionCancelled {
		return nil, conflict("cancelled subscriptions cannot be renewed")
	}
	renew(sub)
	if err := s.saveSchedule(ctx, s.db, sub); err != nil {
		return nil, err
	}
	v := s.view(*sub)
	return &v, nil
}

func renew(sub *models.Subscription) {
	sub.NextPaymentDate = finance.NextPaymentDate(sub.NextPaymentDate, sub.Frequency)
	if sub.Status == models.SubscriptionPendingRenewal {
		sub.Status = models.SubscriptionActive
	}
}

func (s *SubscriptionService) saveSchedule(ctx context.Context, db *gorm.DB, sub *models.Subscription) error {
	err := db.WithContext(ctx).Model(sub).
		Select("next_payment_date", "status", "updated_at").
		Updates(sub).Error
	if err != nil {
		return fmt.Errorf("save subscription schedule: %w", err)
	}
	return nil
}

// Cancel marks the subscription cancelled.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, id uuid.UUID) (*SubscriptionView, error) {
	sub, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sub.Status = models.SubscriptionCancelled
	if err := s.saveSchedule(ctx, s.db, sub); err != nil {
		return nil, err
	}
	v := s.view(*sub)
	return &v, nil
}

// RenewDue advances every active or pending subscription whose payment date
// is not in the future until it is. It returns the number renewed.
func (s *SubscriptionService) RenewDue(ctx context.Context, now time.Time) (int, error) {
	cutoff := today(now)
	var due []models.Subscription
	err := s.db.WithContext(ctx).
		Where("status IN ? AND next_payment_date <= ?",
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionPendingRenewal}, cutoff).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("load due subscriptions: %w", err)
	}

	renewed := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range due {
			sub := &due[i]
			for !sub.NextPaymentDate.After(cutoff) {
				renew(sub)
			}
			if err := s.saveSchedule(ctx, tx, sub); err != nil {
				return err
			}
			renewed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if renewed > 0 {
		s.log.InfoContext(ctx, "subscriptions renewed", log.FieldOperation, log.OpRenew, log.FieldCount, renewed)
	}
	return renewed, nil
}
