package models

import "time"

type ActivityAction string

const (
	ActivityCreate       ActivityAction = "CREATE"
	ActivityUpdate       ActivityAction = "UPDATE"
	ActivityDelete       ActivityAction = "DELETE"
	ActivityStatusChange ActivityAction = "STATUS_CHANGE"
	ActivityAssign       ActivityAction = "ASSIGN"
	ActivityArchive      ActivityAction = "ARCHIVE"
	ActivityRating       ActivityAction = "RATING"
	ActivityComment      ActivityAction = "COMMENT"
)

func (a ActivityAction) Valid() bool {
	switch a {
	case ActivityCreate, ActivityUpdate, ActivityDelete, ActivityStatusChange,
		ActivityAssign, ActivityArchive, ActivityRating, ActivityComment:
		return true
	}
	return false
}

// Activity is an append-only audit record. TaskID is cleared when the task
// is deleted so the record survives.
type Activity struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Action    ActivityAction `gorm:"type:varchar(20);not null;index" json:"action"`
	Details   string         `gorm:"type:text" json:"details"`
	UserID    uint64         `gorm:"not null;index" json:"userId"`
	TaskID    *uint64        `gorm:"index" json:"taskId"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`

	// Relations
	User User  `gorm:"foreignKey:UserID" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL" json:"-"`
}
