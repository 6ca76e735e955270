package services

import (
	"errors"
	"testing"
	"time"

	"casebook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func paymentInput(t models.PaymentType) PaymentInput {
	d := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	return PaymentInput{
		Date:   &d,
		Amount: decimal.RequireFromString("1500.50"),
		Type:   t,
	}
}

// failDelete заставляет удаление строк из table падать. inside вызывается в той же транзакции прямо перед отказом.
func failDelete(t *testing.T, db *gorm.DB, table string, inside func(tx *gorm.DB)) {
	t.Helper()
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		if inside != nil {
			inside(tx.Session(&gorm.Session{NewDB: true}))
		}
		_ = tx.AddError(errors.New("delete refused"))
	})
	require.NoError(t, err)
}
