package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every status in workflow order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	}
	return false
}

// Label returns the human-readable status name used in activity details.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusInReview:
		return "In Review"
	case TaskStatusDone:
		return "Done"
	}
	return string(s)
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// TaskPriorities lists every priority from lowest to highest.
var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Department  Department   `gorm:"type:varchar(30);not null;index" json:"department"`
	DueDate     *time.Time   `json:"dueDate"`
	AssigneeID  *uint64      `gorm:"index" json:"assigneeId"`
	CreatorID   uint64       `gorm:"not null;index" json:"creatorId"`
	CompletedAt *time.Time   `json:"completedAt"`
	IsArchived  bool         `gorm:"not null;default:false;index" json:"isArchived"`
	ArchivedAt  *time.Time   `json:"archivedAt"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	// Relations
	Creator  User         `gorm:"foreignKey:CreatorID" json:"-"`
	Assignee *User        `gorm:"foreignKey:AssigneeID" json:"-"`
	Comments []Comment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings  []TaskRating `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
