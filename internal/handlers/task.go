package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/services"
	"github.com/yukikurage/taskhub-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
}

func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
	}
}

// ListTasks returns active tasks, or archived ones with ?archived=true.
// Optional filters: status, department, priority, assigneeId. Passing page
// switches to a paginated response.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	assigneeID, ok := queryID(c, "assigneeId")
	if !ok {
		return
	}

	input := services.ListTasksInput{
		Archived:   c.Query("archived") == "true",
		AssigneeID: assigneeID,
	}
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v := c.Query("department"); v != "" {
		department := models.Department(v)
		input.Department = &department
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}

	paginate := utils.WantsPagination(c)
	params := utils.GetPaginationParams(c)
	if paginate {
		input.Page = params.Page
		input.PageSize = params.Limit
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response := gin.H{"tasks": dto.ToTaskDTOs(tasks)}
	if paginate {
		response["pagination"] = utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetTask returns a task with comments, ratings and the average rating.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	task, avg, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	out := dto.ToTaskDTO(*task)
	out.AvgRating = &avg
	c.JSON(http.StatusOK, gin.H{"task": out})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title"`
		Description *string             `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		Department  models.Department   `json:"department"`
		DueDate     *string             `json:"dueDate"`
		AssigneeID  *uint64             `json:"assigneeId"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Department:  req.Department,
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, ok := parseTime(*req.DueDate)
		if !ok {
			apierrors.BadRequest(c, "Invalid dueDate")
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": dto.ToTaskDTO(*task)})
}

// UpdateTask applies a partial update. Absent fields are left alone; null
// clears description, dueDate and assigneeId.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       dto.Optional[string]              `json:"title"`
		Description dto.Optional[string]              `json:"description"`
		Status      dto.Optional[models.TaskStatus]   `json:"status"`
		Priority    dto.Optional[models.TaskPriority] `json:"priority"`
		Department  dto.Optional[models.Department]   `json:"department"`
		DueDate     dto.Optional[string]              `json:"dueDate"`
		AssigneeID  dto.Optional[uint64]              `json:"assigneeId"`
		IsArchived  dto.Optional[bool]                `json:"isArchived"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	for _, field := range []struct {
		name string
		set  bool
		null bool
	}{
		{"title", req.Title.Set, req.Title.Null},
		{"status", req.Status.Set, req.Status.Null},
		{"priority", req.Priority.Set, req.Priority.Null},
		{"department", req.Department.Set, req.Department.Null},
		{"isArchived", req.IsArchived.Set, req.IsArchived.Null},
	} {
		if field.set && field.null {
			apierrors.BadRequest(c, field.name+" cannot be null")
			return
		}
	}

	input.Title, _ = req.Title.Ptr()
	input.Status, _ = req.Status.Ptr()
	input.Priority, _ = req.Priority.Ptr()
	input.Department, _ = req.Department.Ptr()
	input.IsArchived, _ = req.IsArchived.Ptr()

	if v, set := req.Description.Ptr(); set {
		input.Description = v
		input.ClearDescription = v == nil
	}
	if v, set := req.AssigneeID.Ptr(); set {
		input.AssigneeID = v
		input.ClearAssignee = v == nil
	}
	if v, set := req.DueDate.Ptr(); set {
		if v == nil || *v == "" {
			input.ClearDueDate = true
		} else {
			due, ok := parseTime(*v)
			if !ok {
				apierrors.BadRequest(c, "Invalid dueDate")
				return
			}
			input.DueDate = &due
		}
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), user, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), user, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DraftTasks suggests tasks extracted from free text. Nothing is saved.
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	type DraftTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "text is required")
		return
	}

	drafts, err := h.aiService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrDepartmentRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidDepartment),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrDraftTextRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "Task drafting is not configured. Set OPENAI_API_KEY to enable it.")
	default:
		internalError(c, err)
	}
}
