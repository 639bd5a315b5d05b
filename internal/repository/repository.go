package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UsernameTaken reports whether any user, deleted ones included, holds the username
	UsernameTaken(ctx context.Context, username string) (bool, error)

	// List returns every non-deleted user, newest first
	List(ctx context.Context) ([]models.User, error)

	// Update writes the given columns. When revokeSessions is set the user's
	// sessions are deleted in the same transaction.
	Update(ctx context.Context, id uint64, fields map[string]interface{}, revokeSessions bool) error

	// SoftDelete marks the user deleted, revokes their sessions and clears
	// them as assignee of unfinished tasks.
	SoftDelete(ctx context.Context, id uint64) error
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// Create stores a new session row
	Create(ctx context.Context, session *models.Session) error

	// FindByTokenHash finds a session and its (non-deleted) user
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)

	// DeleteByID deletes a single session
	DeleteByID(ctx context.Context, id uint64) error

	// DeleteByTokenHash deletes the session for a token, if any
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired deletes every session expired at now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// CreateWithEffects inserts the task, then its activity and notifications,
	// in one transaction. The activity's TaskID is filled in.
	CreateWithEffects(ctx context.Context, task *models.Task, activity *models.Activity, notifications []models.Notification) error

	// UpdateWithEffects writes the changed columns plus the activity and
	// notifications in one transaction.
	UpdateWithEffects(ctx context.Context, id uint64, fields map[string]interface{}, activity *models.Activity, notifications []models.Notification) error

	// DeleteWithActivity removes the task with its comments and ratings,
	// detaches its activity history and records the deletion.
	DeleteWithActivity(ctx context.Context, id uint64, activity *models.Activity) error

	// ListForReport returns tasks with assignee and ratings loaded
	ListForReport(ctx context.Context, filter TaskFilter) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Archived    *bool
	Status      *models.TaskStatus
	Department  *models.Department
	Priority    *models.TaskPriority
	AssigneeID  *uint64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// CreateWithEffects inserts the comment, activity and notifications in one transaction
	CreateWithEffects(ctx context.Context, comment *models.Comment, activity *models.Activity, notifications []models.Notification) error

	// FindByID finds a comment with its author
	FindByID(ctx context.Context, id uint64) (*models.Comment, error)
}

// RatingRepository defines the interface for task rating data access
type RatingRepository interface {
	// Submit updates the (task, user) rating in place or inserts it together
	// with activity. It reports whether a new row was created.
	Submit(ctx context.Context, rating *models.TaskRating, activity *models.Activity) (bool, error)

	// ListByTask returns the task's ratings with their authors, newest first
	ListByTask(ctx context.Context, taskID uint64) ([]models.TaskRating, error)

	// FindByID finds a rating with its author
	FindByID(ctx context.Context, id uint64) (*models.TaskRating, error)
}

// ActivityRepository defines the interface for activity feed access
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id uint64) (*models.Activity, error)
	List(ctx context.Context, taskID *uint64, limit int) ([]models.Activity, error)
}

// NotificationRepository defines the interface for per-user notifications
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)

	// MarkRead marks one of the user's notifications read. It returns
	// gorm.ErrRecordNotFound when the notification is not theirs.
	MarkRead(ctx context.Context, id, userID uint64) error

	MarkAllRead(ctx context.Context, userID uint64) error
}

// MessageRepository defines the interface for direct messages
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint64) (*models.Message, error)

	// ListConversation returns messages between two users, oldest first
	ListConversation(ctx context.Context, userID, otherID uint64) ([]models.Message, error)

	// ListForUser returns every message sent or received by the user, newest first
	ListForUser(ctx context.Context, userID uint64) ([]models.Message, error)

	CountUnread(ctx context.Context, userID uint64) (int64, error)

	// MarkReadFrom marks messages from sender to receiver read
	MarkReadFrom(ctx context.Context, receiverID, senderID uint64) (int64, error)
}
