package utils

import (
	"github.com/kabaadwala/marketplace/models"
	"gorm.io/gorm"
)

// Notify creates an in-app notification for a user. Failures are logged
// and swallowed: a missing notification never fails the triggering flow.
func Notify(db *gorm.DB, userID uint, notifType, title, message string) {
	n := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if err := db.Create(&n).Error; err != nil {
		LogError("Failed to create notification for user %d: %v", userID, err)
	}
}
