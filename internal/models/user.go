package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleLawyer     UserRole = "lawyer"
	RoleAccountant UserRole = "accountant"
	RoleViewer     UserRole = "viewer"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string   `gorm:"size:255" json:"name"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
}
