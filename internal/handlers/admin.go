package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libris/api/internal/ids"
	"libris/api/internal/models"
	"libris/api/internal/security"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": items})
}

type createUserRequest struct {
	Email        string               `json:"email" binding:"required,email"`
	Password     string               `json:"password" binding:"required,min=8"`
	DisplayName  string               `json:"displayName" binding:"required"`
	Role         string               `json:"role" binding:"required,oneof=student staff admin"`
	AssignedRole *models.AssignedRole `json:"assignedRole"`
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user payload"})
		return
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := models.User{
		ID:           ids.New(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		Role:         models.UserRole(req.Role),
		Status:       models.UserStatusActive,
		AssignedRole: req.AssignedRole,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// UpdateUserStatus transitions an account's status. Any transition away from
// active revokes every live session the account holds, so the user is logged
// out everywhere on their next request.
func (h HandlerSet) UpdateUserStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status payload"})
		return
	}

	userID := c.Param("id")
	status := models.UserStatus(req.Status)

	if err := h.users.UpdateStatus(c.Request.Context(), userID, status); err != nil {
		h.respondError(c, err)
		return
	}

	if status != models.UserStatusActive {
		if err := h.sessions.RevokeAllForUser(c.Request.Context(), userID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	if err := h.sessions.RevokeAllForUser(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func pagination(c *gin.Context) (limit int, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
