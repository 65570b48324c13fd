package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "Admin"
	RoleUser  UserRole = "User"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:100" json:"fullName,omitempty"`
	Role         UserRole  `gorm:"type:varchar(50);not null;default:'User'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
