package services

import (
	"context"
	"fmt"
	"strings"

	"casebook/internal/models"

	"gorm.io/gorm"
)

// LookupService — справочники платежей: виды дохода, типы сделок, источники и статусы.
type LookupService struct {
	db *gorm.DB
}

func NewLookupService(db *gorm.DB) *LookupService {
	return &LookupService{db: db}
}

type LookupInput struct {
	Name        string             `json:"name"`
	PaymentType models.PaymentType `json:"paymentType"` // только для видов дохода
}

// List читает любой справочник, отсортированный по имени. dst — указатель на срез моделей.
func (s *LookupService) List(ctx context.Context, dst any) error {
	if err := s.db.WithContext(ctx).Order("name asc, id asc").Find(dst).Error; err != nil {
		return fmt.Errorf("list lookup: %w", err)
	}
	return nil
}

func (s *LookupService) CreateIncomeType(ctx context.Context, in LookupInput) (*models.IncomeType, error) {
	name, err := lookupName(in.Name)
	if err != nil {
		return nil, err
	}
	pt := models.PaymentType(strings.ToLower(strings.TrimSpace(string(in.PaymentType))))
	if !pt.Valid() {
		return nil, invalid("paymentType must be %q or %q", models.PaymentIncome, models.PaymentExpense)
	}
	it := models.IncomeType{Name: name, PaymentType: pt}
	if err := s.db.WithContext(ctx).Create(&it).Error; err != nil {
		return nil, fmt.Errorf("create income type: %w", err)
	}
	return &it, nil
}

func (s *LookupService) CreateDealType(ctx context.Context, in LookupInput) (*models.DealType, error) {
	name, err := lookupName(in.Name)
	if err != nil {
		return nil, err
	}
	v := models.DealType{Name: name}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, fmt.Errorf("create deal type: %w", err)
	}
	return &v, nil
}

func (s *LookupService) CreatePaymentSource(ctx context.Context, in LookupInput) (*models.PaymentSource, error) {
	name, err := lookupName(in.Name)
	if err != nil {
		return nil, err
	}
	v := models.PaymentSource{Name: name}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, fmt.Errorf("create payment source: %w", err)
	}
	return &v, nil
}

func (s *LookupService) CreatePaymentStatus(ctx context.Context, in LookupInput) (*models.PaymentStatus, error) {
	name, err := lookupName(in.Name)
	if err != nil {
		return nil, err
	}
	v := models.PaymentStatus{Name: name}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, fmt.Errorf("create payment status: %w", err)
	}
	return &v, nil
}

func lookupName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", invalid("name is required")
	}
	if len([]rune(name)) > 255 {
		return "", invalid("name must be at most 255 characters")
	}
	return name, nil
}
