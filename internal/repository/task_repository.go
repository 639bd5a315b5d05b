package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrCreateTask is returned when the task insert of a create transaction fails.
	ErrCreateTask = errors.New("task repository: create task failed")
	// ErrUpdateTask is returned when the task update of an update transaction fails.
	ErrUpdateTask = errors.New("task repository: update task failed")
	// ErrDeleteTask is returned when removing a task or its dependents fails.
	ErrDeleteTask = errors.New("task repository: delete task failed")
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID with optional preloading. User relations are
// loaded even when the user was deleted.
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = preloadRelation(query, p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := applyTaskFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC, tasks.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	for _, p := range []string{"Creator", "Assignee", "Comments", "Comments.User"} {
		listQuery = preloadRelation(listQuery, p)
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *GormTaskRepository) CreateWithEffects(ctx context.Context, task *models.Task, activity *models.Activity, notifications []models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator", "Assignee", "Comments", "Ratings").Create(task).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTask, err)
		}

		if activity != nil {
			activity.TaskID = &task.ID
		}

		return writeEffects(tx, activity, notifications)
	})
}

func (r *GormTaskRepository) UpdateWithEffects(ctx context.Context, id uint64, fields map[string]interface{}, activity *models.Activity, notifications []models.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&models.Task{ID: id}).Updates(fields)
			if result.Error != nil {
				return fmt.Errorf("%w: %v", ErrUpdateTask, result.Error)
			}
		}

		return writeEffects(tx, activity, notifications)
	})
}

func (r *GormTaskRepository) DeleteWithActivity(ctx context.Context, id uint64, activity *models.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Activity{}).
			Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteTask, err)
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteTask, err)
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskRating{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteTask, err)
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrDeleteTask, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return writeEffects(tx, activity, nil)
	})
}

func (r *GormTaskRepository) ListForReport(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := applyTaskFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter)
	query = preloadRelation(query, "Assignee")
	query = query.Preload("Ratings")

	if err := query.Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func applyTaskFilter(query *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.Archived != nil {
		query = query.Where("tasks.is_archived = ?", *filter.Archived)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Department != nil {
		query = query.Where("tasks.department = ?", *filter.Department)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("tasks.created_at < ?", *filter.CreatedTo)
	}
	return query
}

// preloadRelation applies the ordering and user scoping each task relation needs.
func preloadRelation(query *gorm.DB, relation string) *gorm.DB {
	switch relation {
	case "Creator", "Assignee", "Comments.User", "Ratings.User":
		return query.Preload(relation, database.UnscopedUsers)
	case "Comments":
		return query.Preload(relation, func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		})
	case "Ratings":
		return query.Preload(relation, func(db *gorm.DB) *gorm.DB {
			return db.Order("task_ratings.created_at DESC, task_ratings.id DESC")
		})
	default:
		return query.Preload(relation)
	}
}
