package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/realtime"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[uint64][]realtime.Event
}

func (p *recordingPublisher) Publish(userID uint64, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[uint64][]realtime.Event{}
	}
	p.events[userID] = append(p.events[userID], event)
}

func (p *recordingPublisher) eventsFor(userID uint64) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.events[userID]...)
}

type serviceTestEnv struct {
	db        *gorm.DB
	ctx       context.Context
	publisher *recordingPublisher

	userRepo repository.UserRepository
	taskRepo repository.TaskRepository

	sessions      *SessionService
	auth          *AuthService
	users         *UserService
	tasks         *TaskService
	comments      *CommentService
	ratings       *RatingService
	notifications *NotificationService
	messages      *MessageService
	activities    *ActivityService
	reports       *ReportService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	publisher := &recordingPublisher{}
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return serviceTestEnv{
		db:        db,
		ctx:       context.Background(),
		publisher: publisher,

		userRepo: userRepo,
		taskRepo: taskRepo,

		sessions:      NewSessionService(repository.NewSessionRepository(db), 0),
		auth:          NewAuthService(userRepo),
		users:         NewUserService(userRepo),
		tasks:         NewTaskService(taskRepo, userRepo, publisher),
		comments:      NewCommentService(repository.NewCommentRepository(db), taskRepo, publisher),
		ratings:       NewRatingService(repository.NewRatingRepository(db), taskRepo),
		notifications: NewNotificationService(repository.NewNotificationRepository(db)),
		messages:      NewMessageService(repository.NewMessageRepository(db), userRepo, publisher),
		activities:    NewActivityService(repository.NewActivityRepository(db), taskRepo),
		reports:       NewReportService(taskRepo, userRepo),
	}
}

func (env serviceTestEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Name:         username,
		PasswordHash: "unused",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env serviceTestEnv) deactivate(t *testing.T, user *models.User) {
	t.Helper()
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)
	user.IsActive = false
}

func (env serviceTestEnv) countActivities(t *testing.T, action models.ActivityAction) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Activity{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func (env serviceTestEnv) countNotifications(t *testing.T, userID uint64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
