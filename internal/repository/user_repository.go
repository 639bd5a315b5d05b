package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrRevokeSessions is returned when deleting a user's sessions fails inside a user transaction.
	ErrRevokeSessions = errors.New("user repository: revoke sessions failed")
	// ErrUnassignTasks is returned when clearing a deleted user's task assignments fails.
	ErrUnassignTasks = errors.New("user repository: unassign tasks failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken checks the unique index, soft-deleted rows included.
func (r *GormUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}, revokeSessions bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&models.User{ID: id}).Updates(fields).Error; err != nil {
				return err
			}
		}

		if revokeSessions {
			if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrRevokeSessions, err)
			}
		}

		return nil
	})
}

func (r *GormUserRepository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrRevokeSessions, err)
		}

		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ? AND status <> ?", id, models.TaskStatusDone).
			Update("assignee_id", nil).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnassignTasks, err)
		}

		return nil
	})
}
