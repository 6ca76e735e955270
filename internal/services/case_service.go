package services

import (
	"context"
	"fmt"
	"strings"

	"casebook/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaseInput struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      models.CaseStatus `json:"status"`
	ClientID    *uint             `json:"clientId"`
}

type CaseService struct {
	db *gorm.DB
}

func NewCaseService(db *gorm.DB) *CaseService {
	return &CaseService{db: db}
}

func (s *CaseService) Get(ctx context.Context, id uint) (*models.ClientCase, error) {
	var c models.ClientCase
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date asc, id asc") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound("case", id, err)
	}
	return &c, nil
}

func (s *CaseService) Create(ctx context.Context, in CaseInput) (*models.ClientCase, error) {
	var c models.ClientCase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateCase(tx, &in); err != nil {
			return err
		}
		applyCase(&c, in)
		return tx.Omit(clause.Associations).Create(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CaseService) Update(ctx context.Context, id uint, in CaseInput) (*models.ClientCase, error) {
	var c models.ClientCase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return notFound("case", id, err)
		}
		if err := validateCase(tx, &in); err != nil {
			return err
		}
		applyCase(&c, in)
		return tx.Omit(clause.Associations).Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete отвязывает платежи от дела и удаляет дело в одной транзакции.
func (s *CaseService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.ClientCase{}, id)
		if err != nil {
			return fmt.Errorf("load case %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("case %d: %w", id, ErrNotFound)
		}

		if err := tx.Model(&models.Payment{}).
			Where("client_case_id = ?", id).
			UpdateColumn("client_case_id", nil).Error; err != nil {
			return fmt.Errorf("detach payments from case %d: %w", id, err)
		}
		if err := tx.Delete(&models.ClientCase{}, id).Error; err != nil {
			return fmt.Errorf("delete case %d: %w", id, err)
		}
		return nil
	})
}

func applyCase(c *models.ClientCase, in CaseInput) {
	c.Title = in.Title
	c.Description = in.Description
	c.Status = in.Status
	c.ClientID = in.ClientID
}

func validateCase(tx *gorm.DB, in *CaseInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = normalize(in.Description)
	in.ClientID = normalizeID(in.ClientID)
	in.Status = models.CaseStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))

	if in.Title == "" {
		return invalid("title is required")
	}
	if len([]rune(in.Title)) > 255 {
		return invalid("title must be at most 255 characters")
	}
	if in.Status == "" {
		in.Status = models.CaseOpen
	}
	if !in.Status.Valid() {
		return invalid("unknown case status %q", in.Status)
	}
	return requireRef(tx, &models.Client{}, in.ClientID, "clientId")
}
