package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns every user, active or not.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		Username   string             `json:"username"`
		Password   string             `json:"password"`
		Name       string             `json:"name"`
		Role       models.Role        `json:"role"`
		Department *models.Department `json:"department"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor, services.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": dto.ToUserDTO(*user)})
}

// UpdateUser changes the given fields. department: null removes the department.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name       *string                         `json:"name"`
		Role       *models.Role                    `json:"role"`
		Department dto.Optional[models.Department] `json:"department"`
		Password   *string                         `json:"password"`
		IsActive   *bool                           `json:"isActive"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateUserInput{
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
		IsActive: req.IsActive,
	}
	if v, set := req.Department.Ptr(); set {
		input.Department = v
		input.ClearDepartment = v == nil
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), actor, userID, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUserFieldsRequired),
		errors.Is(err, services.ErrNameEmpty),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidDepartment),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrCannotDeactivateSelf):
		apierrors.BadRequest(c, err.Error())
	default:
		internalError(c, err)
	}
}
