package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/auth"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrForbidden            = errors.New("action not permitted for this role")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUserFieldsRequired   = errors.New("username, password and name are required")
	ErrNameEmpty            = errors.New("name cannot be empty")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidDepartment    = errors.New("invalid department")
	ErrCannotDeleteSelf     = errors.New("you cannot delete your own account")
	ErrCannotDeactivateSelf = errors.New("you cannot deactivate your own account")
)

// UserService manages user accounts.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserInput struct {
	Username   string
	Password   string
	Name       string
	Role       models.Role
	Department *models.Department
}

// UpdateUserInput carries only the fields to change. ClearDepartment
// removes the department.
type UpdateUserInput struct {
	Name            *string
	Role            *models.Role
	Department      *models.Department
	ClearDepartment bool
	Password        *string
	IsActive        *bool
}

// ListUsers returns active and inactive users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) CreateUser(ctx context.Context, actor *models.User, input CreateUserInput) (*models.User, error) {
	if !policy.Allowed(policy.ActionCreateUser, actor.Role) {
		return nil, ErrForbidden
	}

	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	if username == "" || name == "" || input.Password == "" {
		return nil, ErrUserFieldsRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == models.RoleAdmin && !policy.Allowed(policy.ActionGrantAdmin, actor.Role) {
		return nil, ErrForbidden
	}
	if input.Department != nil && !input.Department.Valid() {
		return nil, ErrInvalidDepartment
	}

	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	digest, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Name:         name,
		PasswordHash: digest,
		Role:         role,
		Department:   input.Department,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	if !policy.Allowed(policy.ActionUpdateUser, actor.Role) {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	fields := map[string]interface{}{}
	revoke := false

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameEmpty
		}
		if name != user.Name {
			fields["name"] = name
		}
	}

	if input.Role != nil && *input.Role != user.Role {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		// Granting or revoking ADMIN is itself an ADMIN action.
		touchesAdmin := *input.Role == models.RoleAdmin || user.Role == models.RoleAdmin
		if touchesAdmin && !policy.Allowed(policy.ActionGrantAdmin, actor.Role) {
			return nil, ErrForbidden
		}
		fields["role"] = *input.Role
	}

	switch {
	case input.ClearDepartment:
		if user.Department != nil {
			fields["department"] = nil
		}
	case input.Department != nil:
		if !input.Department.Valid() {
			return nil, ErrInvalidDepartment
		}
		fields["department"] = *input.Department
	}

	if input.Password != nil {
		if user.Role == models.RoleAdmin && !policy.Allowed(policy.ActionSetAdminPassword, actor.Role) {
			return nil, ErrForbidden
		}
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		digest, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		fields["password_hash"] = digest
	}

	if input.IsActive != nil && *input.IsActive != user.IsActive {
		if !policy.Allowed(policy.ActionToggleUserActive, actor.Role) {
			return nil, ErrForbidden
		}
		if !*input.IsActive && actor.ID == user.ID {
			return nil, ErrCannotDeactivateSelf
		}
		fields["is_active"] = *input.IsActive
		revoke = !*input.IsActive
	}

	if err := s.userRepo.Update(ctx, id, fields, revoke); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.userRepo.FindByID(ctx, id)
}

// DeleteUser soft-deletes the account. Tasks the user created are kept.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id uint64) error {
	if !policy.Allowed(policy.ActionDeleteUser, actor.Role) {
		return ErrForbidden
	}
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
