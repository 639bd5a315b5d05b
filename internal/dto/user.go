package dto

import (
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64             `json:"id"`
	Username   string             `json:"username"`
	Name       string             `json:"name"`
	Role       models.Role        `json:"role"`
	Department *models.Department `json:"department"`
	Avatar     *string            `json:"avatar,omitempty"`
	IsActive   bool               `json:"isActive"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// UserRefDTO is the compact user embedded in tasks, comments and messages.
type UserRefDTO struct {
	ID         uint64             `json:"id"`
	Name       string             `json:"name"`
	Username   string             `json:"username"`
	Role       models.Role        `json:"role,omitempty"`
	Department *models.Department `json:"department,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Avatar:     user.Avatar,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToUserRefDTO returns nil for a relation that was not loaded.
func ToUserRefDTO(user *models.User) *UserRefDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserRefDTO{
		ID:         user.ID,
		Name:       user.Name,
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department,
	}
}

// toAuthorRefDTO drops role and department, matching the comment and
// message author shape.
func toAuthorRefDTO(user *models.User) *UserRefDTO {
	ref := ToUserRefDTO(user)
	if ref != nil {
		ref.Role = ""
		ref.Department = nil
	}
	return ref
}
