package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// ErrCreateComment is returned when the comment insert of a comment transaction fails.
var ErrCreateComment = errors.New("comment repository: create comment failed")

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) CreateWithEffects(ctx context.Context, comment *models.Comment, activity *models.Activity, notifications []models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Task", "User").Create(comment).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateComment, err)
		}
		return writeEffects(tx, activity, notifications)
	})
}

func (r *GormCommentRepository) FindByID(ctx context.Context, id uint64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User", database.UnscopedUsers).
		First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
