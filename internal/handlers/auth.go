package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libris/api/internal/models"
	"libris/api/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.cookies.SetSession(c, result.Token, result.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Logged in",
		"redirectUrl": result.RedirectURL,
		"user":        toUserResponse(result.User),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.auth.Logout(c); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Logged out",
		"redirectUrl": "/login",
	})
}

type impersonateRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h HandlerSet) Impersonate(c *gin.Context) {
	var req impersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	redirectURL, err := h.impersonation.Start(c, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Impersonation started",
		"redirectUrl": redirectURL,
	})
}

func (h HandlerSet) ExitImpersonation(c *gin.Context) {
	redirectURL, err := h.impersonation.Exit(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Impersonation ended",
		"redirectUrl": redirectURL,
	})
}

func (h HandlerSet) ImpersonationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"impersonating": h.impersonation.Active(c),
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	auth, err := h.auth.CurrentSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          toUserResponse(auth.User),
		"impersonating": auth.Impersonating,
	})
}

type userResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	DisplayName  string               `json:"displayName"`
	Role         string               `json:"role"`
	Status       string               `json:"status"`
	AssignedRole *models.AssignedRole `json:"assignedRole,omitempty"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         string(user.Role),
		Status:       string(user.Status),
		AssignedRole: user.AssignedRole,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
