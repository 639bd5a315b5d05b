package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidActivityAction = errors.New("invalid activity action")

// ActivityService reads the audit feed and records client-side activity.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	taskRepo     repository.TaskRepository
}

func NewActivityService(activityRepo repository.ActivityRepository, taskRepo repository.TaskRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, taskRepo: taskRepo}
}

// List returns the newest activities, optionally for one task. limit is
// clamped to [1, MaxActivityLimit].
func (s *ActivityService) List(ctx context.Context, taskID *uint64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = constants.DefaultActivityLimit
	}
	if limit > constants.MaxActivityLimit {
		limit = constants.MaxActivityLimit
	}

	activities, err := s.activityRepo.List(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (s *ActivityService) Record(ctx context.Context, actor *models.User, action models.ActivityAction, details string, taskID *uint64) (*models.Activity, error) {
	if !action.Valid() {
		return nil, ErrInvalidActivityAction
	}

	if taskID != nil {
		if _, err := s.taskRepo.FindByID(ctx, *taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
	}

	activity := &models.Activity{
		Action:  action,
		Details: details,
		UserID:  actor.ID,
		TaskID:  taskID,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	countActivity(activity)

	saved, err := s.activityRepo.FindByID(ctx, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	return saved, nil
}
