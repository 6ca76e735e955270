package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"casebook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientInput struct {
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
	Address  *string `json:"address"`
	INN      *string `json:"inn"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"` // по умолчанию true
}

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// Get отдаёт клиента вместе с делами и платежами — только для карточки.
func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	err := s.db.WithContext(ctx).
		Preload("Cases", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date asc, id asc") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound("client", id, err)
	}
	return &c, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := validateClient(&in); err != nil {
		return nil, err
	}
	var c models.Client
	applyClient(&c, in)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, in ClientInput) (*models.Client, error) {
	if err := validateClient(&in); err != nil {
		return nil, err
	}
	var c models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return notFound("client", id, err)
		}
		applyClient(&c, in)
		return tx.Omit(clause.Associations).Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete в одной транзакции: платежи клиента и его дел теряют ссылки на клиента и дело,
// дела отвязываются от клиента (не удаляются), затем удаляется сам клиент.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Client{}, id)
		if err != nil {
			return fmt.Errorf("load client %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("client %d: %w", id, ErrNotFound)
		}

		caseIDs := tx.Model(&models.ClientCase{}).Select("id").Where("client_id = ?", id)
		if err := tx.Model(&models.Payment{}).
			Where("client_id = ? OR client_case_id IN (?)", id, caseIDs).
			UpdateColumns(map[string]any{"client_id": nil, "client_case_id": nil}).Error; err != nil {
			return fmt.Errorf("detach payments from client %d: %w", id, err)
		}
		if err := tx.Model(&models.ClientCase{}).
			Where("client_id = ?", id).
			UpdateColumn("client_id", nil).Error; err != nil {
			return fmt.Errorf("detach cases from client %d: %w", id, err)
		}
		if err := tx.Delete(&models.Client{}, id).Error; err != nil {
			return fmt.Errorf("delete client %d: %w", id, err)
		}
		return nil
	})
}

func applyClient(c *models.Client, in ClientInput) {
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Company = in.Company
	c.Address = in.Address
	c.INN = in.INN
	c.Notes = in.Notes
	c.IsActive = *in.IsActive
}

func validateClient(in *ClientInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalize(in.Email)
	in.Phone = normalize(in.Phone)
	in.Company = normalize(in.Company)
	in.Address = normalize(in.Address)
	in.INN = normalize(in.INN)
	in.Notes = normalize(in.Notes)
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}

	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Email != nil && !strings.Contains(*in.Email, "@") {
		return invalid("email %q is not valid", *in.Email)
	}
	if in.INN != nil && !validINN(*in.INN) {
		return invalid("inn must contain 10 or 12 digits")
	}
	return nil
}

func validINN(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
