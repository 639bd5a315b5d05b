package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/models"
)

func TestOptional(t *testing.T) {
	var body struct {
		DueDate    Optional[time.Time] `json:"dueDate"`
		AssigneeID Optional[uint64]    `json:"assigneeId"`
		Title      Optional[string]    `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null,"assigneeId":7}`), &body))

	assert.True(t, body.DueDate.Set)
	assert.True(t, body.DueDate.Null)
	v, ok := body.DueDate.Ptr()
	assert.True(t, ok)
	assert.Nil(t, v)

	id, ok := body.AssigneeID.Ptr()
	require.True(t, ok)
	require.NotNil(t, id)
	assert.Equal(t, uint64(7), *id)

	_, ok = body.Title.Ptr()
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`{"assigneeId":"x"}`), &body))
}

func TestToTaskDTO_Relations(t *testing.T) {
	assigneeID := uint64(2)
	task := models.Task{
		ID:         1,
		Title:      "Pour foundation",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityHigh,
		Department: models.DepartmentCivil,
		CreatorID:  1,
		AssigneeID: &assigneeID,
		Creator:    models.User{ID: 1, Name: "Admin", Username: "admin", Role: models.RoleAdmin},
		Assignee:   &models.User{ID: 2, Name: "Sam", Username: "sam", Role: models.RoleEmployee},
		Comments: []models.Comment{
			{ID: 9, TaskID: 1, UserID: 2, Content: "on it", User: models.User{ID: 2, Name: "Sam", Username: "sam", Role: models.RoleEmployee}},
		},
	}

	out := ToTaskDTO(task)
	require.NotNil(t, out.Creator)
	assert.Equal(t, models.RoleAdmin, out.Creator.Role)
	require.NotNil(t, out.Assignee)
	assert.Equal(t, "sam", out.Assignee.Username)
	require.Len(t, out.Comments, 1)
	assert.Empty(t, out.Comments[0].User.Role)
	assert.Nil(t, out.Ratings)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"assignee":{`)
	assert.NotContains(t, string(raw), `"ratings"`)
}

func TestToActivityDTO_DeletedTask(t *testing.T) {
	out := ToActivityDTO(models.Activity{ID: 3, Action: models.ActivityDelete, Details: "deleted", UserID: 1})
	assert.Nil(t, out.Task)
	assert.Nil(t, out.TaskID)
}
