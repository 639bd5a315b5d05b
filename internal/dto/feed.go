package dto

import (
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
)

// ActivityDTO represents an activity feed entry
type ActivityDTO struct {
	ID        uint64                `json:"id"`
	Action    models.ActivityAction `json:"action"`
	Details   string                `json:"details"`
	UserID    uint64                `json:"userId"`
	TaskID    *uint64               `json:"taskId"`
	CreatedAt time.Time             `json:"createdAt"`
	User      *UserRefDTO           `json:"user,omitempty"`
	Task      *TaskRefDTO           `json:"task"`
}

// MessageDTO represents a direct message
type MessageDTO struct {
	ID         uint64      `json:"id"`
	SenderID   uint64      `json:"senderId"`
	ReceiverID uint64      `json:"receiverId"`
	Content    string      `json:"content"`
	IsRead     bool        `json:"isRead"`
	CreatedAt  time.Time   `json:"createdAt"`
	Sender     *UserRefDTO `json:"sender,omitempty"`
}

func ToActivityDTO(activity models.Activity) ActivityDTO {
	out := ActivityDTO{
		ID:        activity.ID,
		Action:    activity.Action,
		Details:   activity.Details,
		UserID:    activity.UserID,
		TaskID:    activity.TaskID,
		CreatedAt: activity.CreatedAt,
		User:      ToUserRefDTO(&activity.User),
	}
	if out.User != nil {
		out.User.Department = nil
	}
	if activity.Task != nil && activity.Task.ID != 0 {
		out.Task = &TaskRefDTO{ID: activity.Task.ID, Title: activity.Task.Title}
	}
	return out
}

func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	out := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		out[i] = ToActivityDTO(a)
	}
	return out
}

func ToMessageDTO(message models.Message) MessageDTO {
	return MessageDTO{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		IsRead:     message.IsRead,
		CreatedAt:  message.CreatedAt,
		Sender:     toAuthorRefDTO(&message.Sender),
	}
}

func ToMessageDTOs(messages []models.Message) []MessageDTO {
	out := make([]MessageDTO, len(messages))
	for i, m := range messages {
		out[i] = ToMessageDTO(m)
	}
	return out
}
