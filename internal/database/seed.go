package database

import (
	"context"
	"fmt"
	"log"

	"github.com/yukikurage/taskhub-api/internal/auth"
	"github.com/yukikurage/taskhub-api/internal/models"
	"gorm.io/gorm"
)

// BootstrapAdmin describes the account created on an empty database.
type BootstrapAdmin struct {
	Username string
	Password string
	Name     string
}

// SeedAdmin creates the bootstrap ADMIN when the users table is empty. It
// reports whether a user was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, admin BootstrapAdmin) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := &models.User{
		Username:     admin.Username,
		Name:         admin.Name,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Printf("Created bootstrap admin %q", admin.Username)
	return true, nil
}
