package models

import "time"

// TaskRating is unique per (task, user); re-rating updates the row.
type TaskRating struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;uniqueIndex:idx_task_ratings_task_user" json:"taskId"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_task_ratings_task_user" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
