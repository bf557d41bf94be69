package handlers

import (
	"errors"
	"net/http"

	"logitrack-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	RegisterRequest
	Role models.UserRole `json:"user_type" binding:"required"`
}

type AdminHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// ListUsers returns all users, optionally filtered by role (admin only)
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	query := h.DB.Order("id asc")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// CreateUser creates an account with any role (admin only)
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: client, agent, or admin"})
		return
	}

	user, err := createUser(h.DB, req.Name, req.Email, req.Password, req.Phone, req.Role)
	if errors.Is(err, errEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		h.Log.Error("create user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	h.Log.Info("user created by admin", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": user.Info()})
}
