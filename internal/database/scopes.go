package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/taskhub-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// UnscopedUsers preloads user relations including soft-deleted users, so
// tasks keep showing the people who created or worked on them.
func UnscopedUsers(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
