package models

import "time"

// Справочники для платежей.

type IncomeType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Name        string      `gorm:"size:255;not null" json:"name"`
	PaymentType PaymentType `gorm:"type:varchar(20);not null" json:"paymentType"`
}

type DealType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `gorm:"size:255;not null" json:"name"`
}

type PaymentSource struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `gorm:"size:255;not null" json:"name"`
}

type PaymentStatus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `gorm:"size:255;not null" json:"name"`
}
