package models

import "time"

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string  `gorm:"size:255;not null;index" json:"name"`
	Email    *string `gorm:"size:255" json:"email"`
	Phone    *string `gorm:"size:50" json:"phone"`
	Company  *string `gorm:"size:255" json:"company"`
	Address  *string `gorm:"size:500" json:"address"`
	INN      *string `gorm:"column:inn;size:12" json:"inn"` // ИНН, по нему ищем в DaData
	Notes    *string `gorm:"type:text" json:"notes"`
	IsActive bool    `gorm:"not null" json:"isActive"`

	// заполняются только в карточке клиента
	Cases    []ClientCase `gorm:"foreignKey:ClientID" json:"cases,omitempty"`
	Payments []Payment    `gorm:"foreignKey:ClientID" json:"payments,omitempty"`
}
