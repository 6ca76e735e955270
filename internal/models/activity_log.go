package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityStatus string

const (
	ActivityInfo    ActivityStatus = "info"
	ActivitySuccess ActivityStatus = "success"
	ActivityWarning ActivityStatus = "warning"
	ActivityFailure ActivityStatus = "failure"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityInfo, ActivitySuccess, ActivityWarning, ActivityFailure:
		return true
	}
	return false
}

// ActivityLogEntry — запись журнала действий. После вставки не меняется.
type ActivityLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index;not null" json:"createdAt"`
	RequestID string    `gorm:"size:64;index" json:"requestId"`

	UserID    *uint  `gorm:"index" json:"userId"`
	UserEmail string `gorm:"size:255" json:"userEmail"`
	UserName  string `gorm:"size:255" json:"userName"`

	Category   string `gorm:"size:50;not null" json:"category"` // "data", "auth", "lookup", "client"
	Action     string `gorm:"size:100;not null" json:"action"`  // "create", "update", "view" ...
	Section    string `gorm:"size:100;index" json:"section"`    // "payments", "cases" ...
	ObjectType string `gorm:"size:50" json:"objectType"`
	ObjectID   string `gorm:"size:64" json:"objectId"`

	Description string         `gorm:"type:text" json:"description"`
	Status      ActivityStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	DurationMs int64  `json:"durationMs"`
	Method     string `gorm:"size:10" json:"method"`
	Path       string `gorm:"size:500" json:"path"`
	Query      string `gorm:"size:2000" json:"query"`
	StatusCode int    `json:"statusCode"`
	IPAddress  string `gorm:"size:64" json:"ipAddress"`
	UserAgent  string `gorm:"size:500" json:"userAgent"`

	Metadata datatypes.JSONMap `json:"metadata"`
}
