package dto

import (
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Department  models.Department   `json:"department"`
	DueDate     *time.Time          `json:"dueDate"`
	AssigneeID  *uint64             `json:"assigneeId"`
	CreatorID   uint64              `json:"creatorId"`
	CompletedAt *time.Time          `json:"completedAt"`
	IsArchived  bool                `json:"isArchived"`
	ArchivedAt  *time.Time          `json:"archivedAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Creator     *UserRefDTO         `json:"creator,omitempty"`
	Assignee    *UserRefDTO         `json:"assignee"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
	Ratings     []RatingDTO         `json:"ratings,omitempty"`
	AvgRating   *float64            `json:"avgRating,omitempty"`
}

// TaskRefDTO is the task summary embedded in activity entries.
type TaskRefDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64      `json:"id"`
	TaskID    uint64      `json:"taskId"`
	UserID    uint64      `json:"userId"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	User      *UserRefDTO `json:"user,omitempty"`
}

// RatingDTO represents a task rating in API responses
type RatingDTO struct {
	ID        uint64      `json:"id"`
	TaskID    uint64      `json:"taskId"`
	UserID    uint64      `json:"userId"`
	Rating    int         `json:"rating"`
	Comment   *string     `json:"comment"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	User      *UserRefDTO `json:"user,omitempty"`
}

// ToTaskDTO converts a Task model and whichever relations were preloaded.
func ToTaskDTO(task models.Task) TaskDTO {
	out := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Department:  task.Department,
		DueDate:     task.DueDate,
		AssigneeID:  task.AssigneeID,
		CreatorID:   task.CreatorID,
		CompletedAt: task.CompletedAt,
		IsArchived:  task.IsArchived,
		ArchivedAt:  task.ArchivedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Creator:     ToUserRefDTO(&task.Creator),
		Assignee:    ToUserRefDTO(task.Assignee),
	}

	if task.Comments != nil {
		out.Comments = ToCommentDTOs(task.Comments)
	}
	if task.Ratings != nil {
		out.Ratings = ToRatingDTOs(task.Ratings)
	}

	return out
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		User:      toAuthorRefDTO(&comment.User),
	}
}

func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, len(comments))
	for i, c := range comments {
		out[i] = ToCommentDTO(c)
	}
	return out
}

func ToRatingDTO(rating models.TaskRating) RatingDTO {
	return RatingDTO{
		ID:        rating.ID,
		TaskID:    rating.TaskID,
		UserID:    rating.UserID,
		Rating:    rating.Rating,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
		User:      toAuthorRefDTO(&rating.User),
	}
}

func ToRatingDTOs(ratings []models.TaskRating) []RatingDTO {
	out := make([]RatingDTO, len(ratings))
	for i, r := range ratings {
		out[i] = ToRatingDTO(r)
	}
	return out
}
