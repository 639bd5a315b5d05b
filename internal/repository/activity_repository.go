package repository

import (
	"context"

	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Omit("User", "Task").Create(activity).Error
}

func (r *GormActivityRepository) FindByID(ctx context.Context, id uint64) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).
		Preload("User", database.UnscopedUsers).
		Preload("Task").
		First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// List returns the newest activities, optionally for one task.
func (r *GormActivityRepository) List(ctx context.Context, taskID *uint64, limit int) ([]models.Activity, error) {
	var activities []models.Activity

	query := r.db.WithContext(ctx).
		Preload("User", database.UnscopedUsers).
		Preload("Task")
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	}

	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
