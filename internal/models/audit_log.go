package models

import "time"

// AuditLog records who did what to which record.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	Username  string    `gorm:"size:100" json:"username"`
	Entity    string    `gorm:"size:50" json:"entity"`
	EntityID  uint      `json:"entityId"`
	Action    string    `gorm:"size:20" json:"action"`
	Details   string    `gorm:"size:500" json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
