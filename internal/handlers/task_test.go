package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(database.Migrate(suite.db))

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	// Without an API key drafting is disabled
	suite.handler = NewTaskHandler(
		services.NewTaskService(taskRepo, userRepo, nil),
		services.NewAIService(""),
	)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		Name:         username,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		Department: models.DepartmentCivil,
		CreatorID:  creatorID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// createAuthContext builds a context as RequireAuth would leave it.
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body interface{}, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyUserID, user.ID)
	}

	return c, w
}

func withID(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

type taskEnvelope struct {
	Task map[string]interface{} `json:"task"`
}

func (suite *TaskHandlerTestSuite) decodeTask(w *httptest.ResponseRecorder) map[string]interface{} {
	var response taskEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Task)
	return response.Task
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.NotContains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
	assert.Equal(suite.T(), "worker", firstTask["creator"].(map[string]interface{})["username"])
}

func (suite *TaskHandlerTestSuite) TestListTasks_Paginated() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	for _, title := range []string{"a", "b", "c"} {
		suite.createTestTask(title, user.ID)
	}

	c, w := suite.createAuthContext("GET", "/api/tasks?page=2&limit=2", nil, user)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Tasks      []map[string]interface{} `json:"tasks"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), 2, response.Pagination.Page)
	assert.EqualValues(suite.T(), 3, response.Pagination.Total)
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidFilter() {
	user := suite.createTestUser("worker", models.RoleEmployee)

	c, w := suite.createAuthContext("GET", "/api/tasks?status=BLOCKED", nil, user)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user)
	withID(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	got := suite.decodeTask(w)
	assert.Equal(suite.T(), task.Title, got["title"])
	assert.Equal(suite.T(), 0.0, got["avgRating"])
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	user := suite.createTestUser("worker", models.RoleEmployee)

	c, w := suite.createAuthContext("GET", "/api/tasks/99", nil, user)
	withID(c, 99)
	suite.handler.GetTask(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	c, w = suite.createAuthContext("GET", "/api/tasks/abc", nil, user)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	suite.handler.GetTask(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("worker", models.RoleEmployee)

	c, w := suite.createAuthContext("POST", "/api/tasks", map[string]interface{}{
		"title":      "New Task",
		"department": "CIVIL",
		"dueDate":    "2025-11-01",
	}, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	got := suite.decodeTask(w)
	assert.Equal(suite.T(), "New Task", got["title"])
	assert.Equal(suite.T(), "TODO", got["status"])
	assert.Equal(suite.T(), "MEDIUM", got["priority"])
	assert.Equal(suite.T(), float64(user.ID), got["creatorId"])
	assert.NotNil(suite.T(), got["dueDate"])
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	user := suite.createTestUser("worker", models.RoleEmployee)

	for _, body := range []map[string]interface{}{
		{"department": "CIVIL"},
		{"title": "No department"},
		{"title": "Bad date", "department": "CIVIL", "dueDate": "tomorrow"},
		{"title": "Bad priority", "department": "CIVIL", "priority": "CRITICAL"},
	} {
		c, w := suite.createAuthContext("POST", "/api/tasks", body, user)
		suite.handler.CreateTask(c)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, body)
	}

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_PartialAndNull() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	assignee := suite.createTestUser("assignee", models.RoleEmployee)
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", map[string]interface{}{
		"assigneeId": assignee.ID,
		"dueDate":    "2025-12-24T10:00:00Z",
	}, user)
	withID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	got := suite.decodeTask(w)
	assert.Equal(suite.T(), float64(assignee.ID), got["assigneeId"])
	assert.Equal(suite.T(), "Test Task", got["title"], "absent fields are untouched")

	c, w = suite.createAuthContext("PUT", "/api/tasks/1", map[string]interface{}{
		"assigneeId": nil,
		"dueDate":    nil,
	}, user)
	withID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	got = suite.decodeTask(w)
	assert.Nil(suite.T(), got["assigneeId"])
	assert.Nil(suite.T(), got["dueDate"])

	c, w = suite.createAuthContext("PUT", "/api/tasks/1", map[string]interface{}{"title": nil}, user)
	withID(c, task.ID)
	suite.handler.UpdateTask(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_StatusDone() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", map[string]interface{}{"status": "DONE"}, user)
	withID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	got := suite.decodeTask(w)
	assert.Equal(suite.T(), "DONE", got["status"])
	assert.NotNil(suite.T(), got["completedAt"])

	var activity models.Activity
	suite.Require().NoError(suite.db.Where("action = ?", models.ActivityStatusChange).First(&activity).Error)
	assert.Contains(suite.T(), activity.Details, "To Do")
	assert.Contains(suite.T(), activity.Details, "Done")
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Forbidden() {
	user := suite.createTestUser("worker", models.RoleEmployee)
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user)
	withID(c, task.ID)
	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.EqualValues(suite.T(), 1, count)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	manager := suite.createTestUser("manager", models.RoleCoordinator)
	task := suite.createTestTask("Test Task", manager.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, manager)
	withID(c, task.ID)
	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestDraftTasks_NotConfigured() {
	user := suite.createTestUser("worker", models.RoleEmployee)

	c, w := suite.createAuthContext("POST", "/api/tasks/draft", map[string]string{"text": "pour the slab on friday"}, user)
	suite.handler.DraftTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "SERVICE_UNAVAILABLE")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Unauthorized() {
	c, w := suite.createAuthContext("POST", "/api/tasks", map[string]string{"title": "x"}, nil)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
