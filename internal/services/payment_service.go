package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casebook/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInput struct {
	Date        *time.Time         `json:"date"`
	Amount      decimal.Decimal    `json:"amount"`
	Type        models.PaymentType `json:"type"`
	Description *string            `json:"description"`
	Notes       *string            `json:"notes"`

	IsPaid   bool       `json:"isPaid"`
	PaidDate *time.Time `json:"paidDate"`

	ClientID        *uint `json:"clientId"`
	ClientCaseID    *uint `json:"clientCaseId"`
	DealTypeID      *uint `json:"dealTypeId"`
	IncomeTypeID    *uint `json:"incomeTypeId"`
	PaymentSourceID *uint `json:"paymentSourceId"`
	PaymentStatusID *uint `json:"paymentStatusId"`

	Account     *string    `json:"account"`
	AccountDate *time.Time `json:"accountDate"`
}

// UnmarshalJSON принимает даты платежа и в RFC3339, и в виде YYYY-MM-DD (полночь UTC).
func (in *PaymentInput) UnmarshalJSON(data []byte) error {
	type plain PaymentInput
	aux := struct {
		*plain
		Date        *jsonDate `json:"date"`
		PaidDate    *jsonDate `json:"paidDate"`
		AccountDate *jsonDate `json:"accountDate"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	in.Date = aux.Date.ptr()
	in.PaidDate = aux.PaidDate.ptr()
	in.AccountDate = aux.AccountDate.ptr()
	return nil
}

type jsonDate time.Time

func (d *jsonDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = jsonDate(t)
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return fmt.Errorf("date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	*d = jsonDate(t)
	return nil
}

func (d *jsonDate) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("ClientCase").
		Preload("IncomeType").
		First(&p, id).Error
	if err != nil {
		return nil, notFound("payment", id, err)
	}
	return &p, nil
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		applyPayment(&p, in)
		return tx.Omit(clause.Associations).Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update заменяет весь редактируемый набор полей. id и created_at не меняются.
func (s *PaymentService) Update(ctx context.Context, id uint, in PaymentInput) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound("payment", id, err)
		}
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		applyPayment(&p, in)
		return tx.Omit(clause.Associations).Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	return nil
}

func applyPayment(p *models.Payment, in PaymentInput) {
	p.Date = in.Date.UTC()
	p.Amount = in.Amount
	p.Type = in.Type
	p.Description = in.Description
	p.Notes = in.Notes
	p.IsPaid = in.IsPaid
	p.PaidDate = in.PaidDate
	p.ClientID = in.ClientID
	p.ClientCaseID = in.ClientCaseID
	p.DealTypeID = in.DealTypeID
	p.IncomeTypeID = in.IncomeTypeID
	p.PaymentSourceID = in.PaymentSourceID
	p.PaymentStatusID = in.PaymentStatusID
	p.Account = in.Account
	p.AccountDate = in.AccountDate
}

// validate нормализует вход и проверяет ссылки. Вызывается внутри транзакции до любой записи.
func (s *PaymentService) validate(tx *gorm.DB, in *PaymentInput) error {
	in.Description = normalize(in.Description)
	in.Notes = normalize(in.Notes)
	in.Account = normalize(in.Account)
	in.ClientID = normalizeID(in.ClientID)
	in.ClientCaseID = normalizeID(in.ClientCaseID)
	in.DealTypeID = normalizeID(in.DealTypeID)
	in.IncomeTypeID = normalizeID(in.IncomeTypeID)
	in.PaymentSourceID = normalizeID(in.PaymentSourceID)
	in.PaymentStatusID = normalizeID(in.PaymentStatusID)

	if in.Date == nil || in.Date.IsZero() {
		return invalid("date is required")
	}
	if !in.Amount.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	if !in.Type.Valid() {
		return invalid("type must be %q or %q", models.PaymentIncome, models.PaymentExpense)
	}
	if in.IsPaid {
		if in.PaidDate == nil {
			d := *in.Date
			in.PaidDate = &d
		}
	} else {
		in.PaidDate = nil
	}
	if in.Account == nil {
		in.AccountDate = nil
	}

	if in.IncomeTypeID != nil {
		var it models.IncomeType
		if err := tx.First(&it, *in.IncomeTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("incomeTypeId %d does not exist", *in.IncomeTypeID)
			}
			return fmt.Errorf("load income type: %w", err)
		}
		if it.PaymentType != in.Type {
			return invalid("income type %q is for %s payments, got %s", it.Name, it.PaymentType, in.Type)
		}
	}

	if err := requireRef(tx, &models.Client{}, in.ClientID, "clientId"); err != nil {
		return err
	}
	if in.ClientCaseID != nil {
		var c models.ClientCase
		if err := tx.First(&c, *in.ClientCaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("clientCaseId %d does not exist", *in.ClientCaseID)
			}
			return fmt.Errorf("load case: %w", err)
		}
		if in.ClientID != nil && c.ClientID != nil && *c.ClientID != *in.ClientID {
			return invalid("case %d belongs to another client", c.ID)
		}
	}
	if err := requireRef(tx, &models.DealType{}, in.DealTypeID, "dealTypeId"); err != nil {
		return err
	}
	if err := requireRef(tx, &models.PaymentSource{}, in.PaymentSourceID, "paymentSourceId"); err != nil {
		return err
	}
	return requireRef(tx, &models.PaymentStatus{}, in.PaymentStatusID, "paymentStatusId")
}
