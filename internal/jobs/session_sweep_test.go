package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type countingDeleter struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (d *countingDeleter) DeleteExpired(ctx context.Context) (int64, error) {
	d.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep ran without a deadline")
	}
	return d.n, d.err
}

func TestSweepSessions(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	user := &models.User{Username: "worker", Name: "Worker", PasswordHash: "x", Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, db.Create(user).Error)

	now := time.Now()
	require.NoError(t, db.Create(&models.Session{TokenHash: "expired", UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&models.Session{TokenHash: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}).Error)

	sessions := services.NewSessionService(repository.NewSessionRepository(db), time.Hour)

	assert.EqualValues(t, 1, SweepSessions(context.Background(), sessions, time.Second))
	assert.EqualValues(t, 0, SweepSessions(context.Background(), sessions, time.Second))

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].TokenHash)
}

func TestSweepSessions_Error(t *testing.T) {
	deleter := &countingDeleter{err: errors.New("db down")}
	assert.Zero(t, SweepSessions(context.Background(), deleter, time.Second))
	assert.EqualValues(t, 1, deleter.calls.Load())
}

func TestStartSessionSweepJob(t *testing.T) {
	deleter := &countingDeleter{n: 2}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSessionSweepJob(ctx, &config.Config{SessionSweepInterval: 10 * time.Millisecond}, deleter)

	assert.Eventually(t, func() bool {
		return deleter.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	stopped := deleter.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, deleter.calls.Load(), "job stops with its context")
}

func TestStartSessionSweepJob_Disabled(t *testing.T) {
	deleter := &countingDeleter{}
	StartSessionSweepJob(context.Background(), &config.Config{SessionSweepInterval: 0}, deleter)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, deleter.calls.Load())
}
