package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var ErrCommentFieldsRequired = errors.New("task and content are required")

// CommentService handles task comments.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	publisher   Publisher
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, publisher Publisher) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		publisher:   publisherOrNoop(publisher),
	}
}

// CreateComment adds a comment and notifies the task's assignee and creator,
// skipping the commenter and never notifying the same user twice.
func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, taskID uint64, content string) (*models.Comment, error) {
	if !policy.Allowed(policy.ActionCreateComment, actor.Role) {
		return nil, ErrForbidden
	}

	content = strings.TrimSpace(content)
	if taskID == 0 || content == "" {
		return nil, ErrCommentFieldsRequired
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	comment := &models.Comment{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Content: content,
	}
	activity := &models.Activity{
		Action:  models.ActivityComment,
		Details: fmt.Sprintf("commented on %q", task.Title),
		UserID:  actor.ID,
		TaskID:  &task.ID,
	}
	notifications := commentRecipients(task, actor)

	if err := s.commentRepo.CreateWithEffects(ctx, comment, activity, notifications); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	announce(s.publisher, activity, notifications)

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return created, nil
}

func commentRecipients(task *models.Task, actor *models.User) []models.Notification {
	var notifications []models.Notification

	if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
		notifications = append(notifications, models.Notification{
			UserID:  *task.AssigneeID,
			Title:   "New comment on your task",
			Message: fmt.Sprintf("%s commented on task %q", actor.Name, task.Title),
		})
	}

	assignedToCreator := task.AssigneeID != nil && *task.AssigneeID == task.CreatorID
	if task.CreatorID != actor.ID && !assignedToCreator {
		notifications = append(notifications, models.Notification{
			UserID:  task.CreatorID,
			Title:   "New comment on a task you created",
			Message: fmt.Sprintf("%s commented on task %q", actor.Name, task.Title),
		})
	}

	return notifications
}
