package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateActivity is returned when the activity insert of a write transaction fails.
	ErrCreateActivity = errors.New("repository: create activity failed")
	// ErrCreateNotification is returned when a notification insert of a write transaction fails.
	ErrCreateNotification = errors.New("repository: create notification failed")
)

// writeEffects records the audit row and notification fan-out of a write
// inside the caller's transaction.
func writeEffects(tx *gorm.DB, activity *models.Activity, notifications []models.Notification) error {
	if activity != nil {
		if err := tx.Create(activity).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateActivity, err)
		}
	}

	if len(notifications) > 0 {
		if err := tx.Create(&notifications).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateNotification, err)
		}
	}

	return nil
}
