package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrTaskIDRequired = errors.New("task id is required")
)

// RatingService handles task ratings.
type RatingService struct {
	ratingRepo repository.RatingRepository
	taskRepo   repository.TaskRepository
}

// NewRatingService creates a new RatingService.
func NewRatingService(ratingRepo repository.RatingRepository, taskRepo repository.TaskRepository) *RatingService {
	return &RatingService{ratingRepo: ratingRepo, taskRepo: taskRepo}
}

// SubmitRating stores the actor's rating of a task. A repeated rating
// replaces the earlier one; only the first one is recorded as activity.
func (s *RatingService) SubmitRating(ctx context.Context, actor *models.User, taskID uint64, rating int, comment *string) (*models.TaskRating, error) {
	if !policy.Allowed(policy.ActionSubmitRating, actor.Role) {
		return nil, ErrForbidden
	}
	if taskID == 0 {
		return nil, ErrTaskIDRequired
	}
	if rating < constants.MinRating || rating > constants.MaxRating {
		return nil, ErrInvalidRating
	}

	if _, err := s.taskRepo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	row := &models.TaskRating{
		TaskID:  taskID,
		UserID:  actor.ID,
		Rating:  rating,
		Comment: comment,
	}
	activity := &models.Activity{
		Action:  models.ActivityRating,
		Details: fmt.Sprintf("rated %d stars", rating),
		UserID:  actor.ID,
		TaskID:  &taskID,
	}

	created, err := s.ratingRepo.Submit(ctx, row, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to submit rating: %w", err)
	}
	if created {
		countActivity(activity)
	}

	saved, err := s.ratingRepo.FindByID(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}
	return saved, nil
}

// ListRatings returns a task's ratings, newest first, with their average.
func (s *RatingService) ListRatings(ctx context.Context, taskID uint64) ([]models.TaskRating, float64, error) {
	if taskID == 0 {
		return nil, 0, ErrTaskIDRequired
	}

	ratings, err := s.ratingRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, AverageRating(ratings), nil
}
