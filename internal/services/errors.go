package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// ValidationError — ошибка входных данных, текст уходит клиенту как есть.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}

// normalize обрезает пробелы, пустую строку превращает в nil
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// нулевой id считаем отсутствующей ссылкой
func normalizeID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// requireRef проверяет, что необязательная ссылка указывает на существующую запись.
func requireRef(tx *gorm.DB, model any, id *uint, field string) error {
	if id == nil {
		return nil
	}
	ok, err := exists(tx, model, *id)
	if err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}
	if !ok {
		return invalid("%s %d does not exist", field, *id)
	}
	return nil
}
