package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/dto"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/realtime"
)

func TestNotificationService(t *testing.T) {
	env := setupServiceTestEnv(t)
	creator := env.createUser(t, "creator", models.RoleEmployee)
	assignee := env.createUser(t, "assignee", models.RoleEmployee)

	for _, title := range []string{"One", "Two"} {
		_, err := env.tasks.CreateTask(env.ctx, creator, CreateTaskInput{
			Title:      title,
			Department: models.DepartmentCivil,
			AssigneeID: &assignee.ID,
		})
		require.NoError(t, err)
	}

	notifications, unread, err := env.notifications.List(env.ctx, assignee.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.EqualValues(t, 2, unread)

	assert.ErrorIs(t, env.notifications.MarkRead(env.ctx, creator.ID, notifications[0].ID), ErrNotificationNotFound)
	require.NoError(t, env.notifications.MarkRead(env.ctx, assignee.ID, notifications[0].ID))

	_, unread, err = env.notifications.List(env.ctx, assignee.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, env.notifications.MarkAllRead(env.ctx, assignee.ID))
	require.NoError(t, env.notifications.MarkAllRead(env.ctx, assignee.ID))

	_, unread, err = env.notifications.List(env.ctx, assignee.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMessageService(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleEmployee)
	bob := env.createUser(t, "bob", models.RoleEmployee)

	sent, err := env.messages.Send(env.ctx, alice, bob.ID, " hi bob ")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", sent.Content)
	assert.False(t, sent.IsRead)

	_, err = env.messages.Send(env.ctx, bob, alice.ID, "hello")
	require.NoError(t, err)

	events := env.publisher.eventsFor(bob.ID)
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventMessage, events[0].Type)
	pushed, ok := events[0].Data.(dto.MessageDTO)
	require.True(t, ok)
	assert.Equal(t, "hi bob", pushed.Content)

	conversation, unread, err := env.messages.List(env.ctx, bob.ID, &alice.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "hi bob", conversation[0].Content, "conversation is oldest first")
	assert.EqualValues(t, 1, unread)

	require.NoError(t, env.messages.MarkRead(env.ctx, bob.ID, alice.ID))
	_, unread, err = env.messages.List(env.ctx, bob.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = env.messages.Send(env.ctx, alice, alice.ID, "me")
	assert.ErrorIs(t, err, ErrCannotMessageSelf)

	_, err = env.messages.Send(env.ctx, alice, 999, "anyone?")
	assert.ErrorIs(t, err, ErrReceiverNotFound)

	_, err = env.messages.Send(env.ctx, alice, bob.ID, "  ")
	assert.ErrorIs(t, err, ErrMessageFieldsRequired)

	assert.ErrorIs(t, env.messages.MarkRead(env.ctx, bob.ID, 0), ErrSenderRequired)
}

func TestActivityService(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "user", models.RoleEmployee)

	task, err := env.tasks.CreateTask(env.ctx, user, CreateTaskInput{Title: "Survey", Department: models.DepartmentCivil})
	require.NoError(t, err)

	recorded, err := env.activities.Record(env.ctx, user, models.ActivityUpdate, "opened drawings", &task.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, recorded.User.ID)

	_, err = env.activities.Record(env.ctx, user, models.ActivityAction("LOGIN"), "", nil)
	assert.ErrorIs(t, err, ErrInvalidActivityAction)

	_, err = env.activities.Record(env.ctx, user, models.ActivityUpdate, "", ptr(uint64(999)))
	assert.ErrorIs(t, err, ErrTaskNotFound)

	all, err := env.activities.List(env.ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, recorded.ID, all[0].ID, "newest first")

	limited, err := env.activities.List(env.ctx, &task.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
