package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleEmpty         = errors.New("title cannot be empty")
	ErrDepartmentRequired = errors.New("department is required")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrInvalidAssignee    = errors.New("assignee does not exist or is inactive")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	publisher Publisher
	now       func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, publisher Publisher) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		publisher: publisherOrNoop(publisher),
		now:       time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Archived   bool
	Status     *models.TaskStatus
	Department *models.Department
	Priority   *models.TaskPriority
	AssigneeID *uint64
	Page       int
	PageSize   int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Department  models.Department
	DueDate     *time.Time
	AssigneeID  *uint64
}

// UpdateTaskInput represents a sparse update. Nil pointers leave the field
// untouched; the Clear flags set nullable fields to null.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.TaskStatus
	Priority         *models.TaskPriority
	Department       *models.Department
	DueDate          *time.Time
	ClearDueDate     bool
	AssigneeID       *uint64
	ClearAssignee    bool
	IsArchived       *bool
}

// ListTasks returns archived or active tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	for _, check := range []error{
		validIfSet(input.Status, ErrInvalidStatus),
		validIfSet(input.Department, ErrInvalidDepartment),
		validIfSet(input.Priority, ErrInvalidPriority),
	} {
		if check != nil {
			return nil, 0, check
		}
	}

	archived := input.Archived
	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Archived:   &archived,
		Status:     input.Status,
		Department: input.Department,
		Priority:   input.Priority,
		AssigneeID: input.AssigneeID,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data and its average rating.
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, float64, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Creator", "Assignee", "Comments", "Comments.User", "Ratings", "Ratings.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, fmt.Errorf("failed to find task: %w", err)
	}

	return task, AverageRating(task.Ratings), nil
}

// CreateTask creates a task, its CREATE activity and the assignee's notification.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if !policy.Allowed(policy.ActionCreateTask, actor.Role) {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Department == "" {
		return nil, ErrDepartmentRequired
	}
	if !input.Department.Valid() {
		return nil, ErrInvalidDepartment
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if input.AssigneeID != nil {
		if err := s.ensureAssignable(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Department:  input.Department,
		DueDate:     input.DueDate,
		AssigneeID:  input.AssigneeID,
		CreatorID:   actor.ID,
	}
	if task.Status == models.TaskStatusDone {
		task.CompletedAt = &now
	}

	activity := &models.Activity{
		Action:  models.ActivityCreate,
		Details: fmt.Sprintf("task created: %q", title),
		UserID:  actor.ID,
	}

	var notifications []models.Notification
	if input.AssigneeID != nil && *input.AssigneeID != actor.ID {
		notifications = append(notifications, models.Notification{
			UserID:  *input.AssigneeID,
			Title:   "New task",
			Message: fmt.Sprintf("Task %q was assigned to you by %s", title, actor.Name),
		})
	}

	if err := s.taskRepo.CreateWithEffects(ctx, task, activity, notifications); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	announce(s.publisher, activity, notifications)

	return s.reload(ctx, task.ID)
}

// UpdateTask applies a sparse update and records one activity describing it.
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	if !policy.Allowed(policy.ActionUpdateTask, actor.Role) {
		return nil, ErrForbidden
	}

	existing, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	changes := DiffTask(existing, input, s.now())

	if changes.NewAssigneeID != nil {
		if err := s.ensureAssignable(ctx, *changes.NewAssigneeID); err != nil {
			return nil, err
		}
	}

	activity := &models.Activity{
		Action:  changes.Action,
		Details: changes.Details,
		UserID:  actor.ID,
		TaskID:  &existing.ID,
	}

	var notifications []models.Notification
	if changes.NewAssigneeID != nil && *changes.NewAssigneeID != actor.ID {
		title := existing.Title
		if input.Title != nil {
			title = strings.TrimSpace(*input.Title)
		}
		notifications = append(notifications, models.Notification{
			UserID:  *changes.NewAssigneeID,
			Title:   "Task assigned to you",
			Message: fmt.Sprintf("Task %q was assigned to you by %s", title, actor.Name),
		})
	}

	if err := s.taskRepo.UpdateWithEffects(ctx, existing.ID, changes.Fields, activity, notifications); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	announce(s.publisher, activity, notifications)

	return s.reload(ctx, existing.ID)
}

// DeleteTask removes a task. Its activity history is kept without the task reference.
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, taskID uint64) error {
	if !policy.Allowed(policy.ActionDeleteTask, actor.Role) {
		return ErrForbidden
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	activity := &models.Activity{
		Action:  models.ActivityDelete,
		Details: fmt.Sprintf("task deleted: %s", task.Title),
		UserID:  actor.ID,
	}
	if err := s.taskRepo.DeleteWithActivity(ctx, task.ID, activity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	announce(s.publisher, activity, nil)

	return nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Creator", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureAssignable(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if !user.IsActive {
		return ErrInvalidAssignee
	}
	return nil
}

func validateUpdate(input UpdateTaskInput) error {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return ErrTitleEmpty
	}
	if err := validIfSet(input.Status, ErrInvalidStatus); err != nil {
		return err
	}
	if err := validIfSet(input.Priority, ErrInvalidPriority); err != nil {
		return err
	}
	return validIfSet(input.Department, ErrInvalidDepartment)
}

type validator interface {
	Valid() bool
}

func validIfSet[T validator](v *T, invalid error) error {
	if v != nil && !(*v).Valid() {
		return invalid
	}
	return nil
}

// AverageRating is the arithmetic mean of the ratings, 0 when there are none.
func AverageRating(ratings []models.TaskRating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
