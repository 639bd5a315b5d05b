package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/services"
)

type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// ListRatings returns the ratings of ?taskId= and their average.
func (h *RatingHandler) ListRatings(c *gin.Context) {
	taskID, ok := queryID(c, "taskId")
	if !ok {
		return
	}
	if taskID == nil {
		apierrors.BadRequest(c, services.ErrTaskIDRequired.Error())
		return
	}

	ratings, avg, err := h.ratingService.ListRatings(c.Request.Context(), *taskID)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings":   dto.ToRatingDTOs(ratings),
		"avgRating": avg,
	})
}

// SubmitRating creates or replaces the current user's rating of a task.
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type SubmitRatingRequest struct {
		TaskID  uint64  `json:"taskId"`
		Rating  int     `json:"rating"`
		Comment *string `json:"comment"`
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), user, req.TaskID, req.Rating, req.Comment)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": dto.ToRatingDTO(*rating)})
}

func respondRatingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrTaskIDRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	default:
		internalError(c, err)
	}
}
