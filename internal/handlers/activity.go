package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/services"
	"github.com/yukikurage/taskhub-api/internal/utils"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListActivities returns the newest activity entries, optionally for ?taskId=.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	taskID, ok := queryID(c, "taskId")
	if !ok {
		return
	}
	limit := utils.GetLimit(c, constants.DefaultActivityLimit, constants.MaxActivityLimit)

	activities, err := h.activityService.List(c.Request.Context(), taskID, limit)
	if err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": dto.ToActivityDTOs(activities)})
}

// RecordActivity stores an activity reported by the client.
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type RecordActivityRequest struct {
		Action  models.ActivityAction `json:"action" binding:"required"`
		Details string                `json:"details"`
		TaskID  *uint64               `json:"taskId"`
	}

	var req RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "action is required")
		return
	}

	activity, err := h.activityService.Record(c.Request.Context(), user, req.Action, req.Details, req.TaskID)
	if err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": dto.ToActivityDTO(*activity)})
}

func respondActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidActivityAction):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		internalError(c, err)
	}
}
