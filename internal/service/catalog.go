package service

import (
	"context"
	"fmt"
	"strings"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService manages the lookup tables entries point at: global
// currencies plus per-user categories and payment methods.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) Currencies(ctx context.Context) ([]models.Currency, error) {
	var out []models.Currency
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return out, nil
}

func (s *CatalogService) CreateCurrency(ctx context.Context, c models.Currency) (*models.Currency, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" || c.Symbol == "" || c.Name == "" {
		return nil, invalid("code, name and symbol are required")
	}
	var dup int64
	if err := s.db.WithContext(ctx).Model(&models.Currency{}).Where("code = ?", c.Code).Count(&dup).Error; err != nil {
		return nil, fmt.Errorf("check currency code: %w", err)
	}
	if dup > 0 {
		return nil, conflict("currency %s already exists", c.Code)
	}
	c.ID = uuid.Nil
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create currency: %w", err)
	}
	return &c, nil
}

func (s *CatalogService) Categories(ctx context.Context, userID uuid.UUID, typ models.CategoryType) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Scopes(ownedBy(userID))
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	var out []models.Category
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *CatalogService) SaveCategory(ctx context.Context, userID uuid.UUID, id *uuid.UUID, in models.Category) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown category type %q", in.Type)
	}
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Category{}).Scopes(ownedBy(userID)).
		Where("LOWER(name) = LOWER(?) AND type = ?", in.Name, in.Type)
	if id != nil {
		q = q.Where("id <> ?", *id)
	}
	var dup int64
	if err := q.Count(&dup).Error; err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if dup > 0 {
		return nil, conflict("category with this name already exists")
	}

	if id == nil {
		c := models.Category{UserID: userID, Name: in.Name, Type: in.Type, Icon: in.Icon, Color: in.Color}
		if err := db.Create(&c).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &c, nil
	}
	var c models.Category
	if err := db.Scopes(ownedBy(userID)).First(&c, "id = ?", *id).Error; err != nil {
		return nil, lookup(err, "category")
	}
	c.Name, c.Type, c.Icon, c.Color = in.Name, in.Type, in.Icon, in.Color
	if err := db.Model(&c).Select("name", "type", "icon", "color", "updated_at").Updates(&c).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// DeleteCategory refuses to drop a category still used by entries or
// budgets.
func (s *CatalogService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteReferenced(ctx, userID, id, &models.Category{}, "category", []dependent{
		{&models.Transaction{}, "category_id", "transactions"},
		{&models.Budget{}, "category_id", "budgets"},
	})
}

func (s *CatalogService) PaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	if err := s.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return out, nil
}

func (s *CatalogService) CreatePaymentMethod(ctx context.Context, userID uuid.UUID, in models.PaymentMethod) (*models.PaymentMethod, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if in.Type == "" {
		in.Type = models.PaymentOther
	}
	if !in.Type.Valid() {
		return nil, invalid("unknown payment method type %q", in.Type)
	}
	pm := models.PaymentMethod{UserID: userID, Name: in.Name, Type: in.Type}
	if err := s.db.WithContext(ctx).Create(&pm).Error; err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}
	return &pm, nil
}

func (s *CatalogService) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteReferenced(ctx, userID, id, &models.PaymentMethod{}, "payment method", []dependent{
		{&models.Transaction{}, "payment_method_id", "transactions"},
		{&models.Debt{}, "payment_method_id", "debts"},
	})
}

type dependent struct {
	model  any
	column string
	what   string
}

func (s *CatalogService) deleteReferenced(ctx context.Context, userID, id uuid.UUID, model any, what string, deps []dependent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx.Scopes(ownedBy(userID)), model, id, what); err != nil {
			return err
		}
		for _, dep := range deps {
			var n int64
			if err := tx.Model(dep.model).Where(dep.column+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("count %s: %w", dep.what, err)
			}
			if n > 0 {
				return conflict("%s is used by %d %s", what, n, dep.what)
			}
		}
		if err := tx.Delete(model, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete %s: %w", what, err)
		}
		return nil
	})
}
