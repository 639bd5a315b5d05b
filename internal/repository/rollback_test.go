package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestUpdateWithEffects_RollsBackWhenActivityFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `activities`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	taskID := uint64(1)
	err := repo.UpdateWithEffects(context.Background(), taskID,
		map[string]interface{}{"status": models.TaskStatusDone},
		&models.Activity{Action: models.ActivityStatusChange, Details: "status changed", UserID: 1, TaskID: &taskID},
		nil,
	)

	require.ErrorIs(t, err, ErrCreateActivity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithEffects_RollsBackWhenNotificationFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `tasks`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `activities`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `notifications`").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.CreateWithEffects(context.Background(),
		&models.Task{Title: "t", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium, Department: models.DepartmentCivil, CreatorID: 1},
		&models.Activity{Action: models.ActivityCreate, UserID: 1},
		[]models.Notification{{UserID: 2, Title: "New task", Message: "m"}},
	)

	require.ErrorIs(t, err, ErrCreateNotification)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithActivity_RollsBackWhenActivityFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `activities`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `comments`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `task_ratings`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `tasks`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `activities`").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.DeleteWithActivity(context.Background(), 1, &models.Activity{Action: models.ActivityDelete, UserID: 1})

	require.ErrorIs(t, err, ErrCreateActivity)
	require.NoError(t, mock.ExpectationsWereMet())
}
