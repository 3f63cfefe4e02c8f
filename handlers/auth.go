package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/middleware"
	"github.com/yourusername/contractor-po/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type LoginRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Passkey string `json:"passkey" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and passkey are required"})
		return
	}

	var user models.User
	if err := h.db.Where("user_id = ?", req.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Passkey), []byte(req.Passkey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.UserID, user.Role, h.cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		config.LogError(config.GetLogger(), "auth", "Login", "generate token", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"userId": user.UserID,
			"name":   user.Name,
			"role":   user.Role,
		},
	})
}

type RegisterRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Passkey string `json:"passkey" binding:"required"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and passkey are required"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Passkey), bcrypt.DefaultCost)
	if err != nil {
		config.LogError(config.GetLogger(), "auth", "Register", "hash passkey", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during registration"})
		return
	}

	name := req.Name
	if name == "" {
		name = req.UserID
	}
	role := req.Role
	if role == "" {
		role = "user"
	}

	user := models.User{
		UserID:  req.UserID,
		Passkey: string(hashed),
		Name:    name,
		Role:    role,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		config.LogError(config.GetLogger(), "auth", "Register", "create user", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during registration"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": user.UserID})
}
