package database

import (
	"context"
	"time"

	"casebook/internal/models"

	"gorm.io/gorm"
)

// ActivityStore — запись и чтение журнала действий.
type ActivityStore struct {
	db *gorm.DB
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Create(ctx context.Context, entry *models.ActivityLogEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

type ActivityFilter struct {
	UserID  *uint
	Section string
	Status  models.ActivityStatus
	From    *time.Time
	To      *time.Time // не включительно
}

func (f ActivityFilter) scope(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Section != "" {
		db = db.Where("section = ?", f.Section)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	return db
}

func (s *ActivityStore) List(ctx context.Context, f ActivityFilter, limit, offset int) ([]models.ActivityLogEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.ActivityLogEntry{}).
		Scopes(f.scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []models.ActivityLogEntry{}
	err := s.db.WithContext(ctx).
		Scopes(f.scope).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func (s *ActivityStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLogEntry{})
	return res.RowsAffected, res.Error
}
