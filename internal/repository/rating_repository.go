package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// ErrSaveRating is returned when inserting or updating a rating fails.
var ErrSaveRating = errors.New("rating repository: save rating failed")

// GormRatingRepository is a GORM implementation of RatingRepository
type GormRatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &GormRatingRepository{db: db}
}

// Submit upserts by (task, user). Only a first rating records activity.
func (r *GormRatingRepository) Submit(ctx context.Context, rating *models.TaskRating, activity *models.Activity) (bool, error) {
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.TaskRating
		err := tx.Where("task_id = ? AND user_id = ?", rating.TaskID, rating.UserID).First(&existing).Error
		switch {
		case err == nil:
			fields := map[string]interface{}{"rating": rating.Rating}
			if rating.Comment != nil {
				fields["comment"] = *rating.Comment
			}
			if err := tx.Model(&existing).Updates(fields).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrSaveRating, err)
			}
			rating.ID = existing.ID
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Omit("Task", "User").Create(rating).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrSaveRating, err)
		}
		created = true

		return writeEffects(tx, activity, nil)
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *GormRatingRepository) ListByTask(ctx context.Context, taskID uint64) ([]models.TaskRating, error) {
	var ratings []models.TaskRating
	if err := r.db.WithContext(ctx).
		Preload("User", database.UnscopedUsers).
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *GormRatingRepository) FindByID(ctx context.Context, id uint64) (*models.TaskRating, error) {
	var rating models.TaskRating
	if err := r.db.WithContext(ctx).
		Preload("User", database.UnscopedUsers).
		First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}
