package models

import "time"

type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseOnHold     CaseStatus = "on_hold"
	CaseClosed     CaseStatus = "closed"
	CaseArchived   CaseStatus = "archived"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseOpen, CaseInProgress, CaseOnHold, CaseClosed, CaseArchived:
		return true
	}
	return false
}

// ClientCase — дело клиента. Клиент может быть не указан.
type ClientCase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      CaseStatus `gorm:"type:varchar(20);not null;default:open" json:"status"`

	ClientID *uint   `gorm:"index" json:"clientId"`
	Client   *Client `json:"client,omitempty"`

	Payments []Payment `json:"payments,omitempty"`
}
