package database

import "fleetcar/internal/models"

// CreateAuditLog appends an entry to the audit trail. Failures are
// swallowed: auditing must never block the operation it records.
func CreateAuditLog(userID uint, username, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Username: username,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = DB.Create(&record).Error
}

// RecentAuditLogs returns the newest entries, capped at limit.
func RecentAuditLogs(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	logs := []models.AuditLog{}
	err := DB.Order("id desc").Limit(limit).Find(&logs).Error
	return logs, err
}
