package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentIncome  PaymentType = "income"
	PaymentExpense PaymentType = "expense"
)

func (t PaymentType) Valid() bool {
	return t == PaymentIncome || t == PaymentExpense
}

type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Date        time.Time       `gorm:"not null;index" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Type        PaymentType     `gorm:"type:varchar(20);not null" json:"type"`
	Description *string         `gorm:"type:text" json:"description"`
	Notes       *string         `gorm:"type:text" json:"notes"`

	IsPaid   bool       `gorm:"not null;default:false" json:"isPaid"`
	PaidDate *time.Time `json:"paidDate"`

	ClientID        *uint `gorm:"index" json:"clientId"`
	ClientCaseID    *uint `gorm:"index" json:"clientCaseId"`
	DealTypeID      *uint `json:"dealTypeId"`
	IncomeTypeID    *uint `json:"incomeTypeId"`
	PaymentSourceID *uint `json:"paymentSourceId"`
	PaymentStatusID *uint `json:"paymentStatusId"`

	// счёт
	Account     *string    `gorm:"size:100" json:"account"`
	AccountDate *time.Time `json:"accountDate"`

	Client     *Client     `json:"client,omitempty"`
	ClientCase *ClientCase `json:"clientCase,omitempty"`
	IncomeType *IncomeType `json:"incomeType,omitempty"`
}
