package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/contractor-po/config"
	"gorm.io/gorm"
)

func authRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(db, cfg)
	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	return router
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	router := authRouter(db)

	w := doJSON(router, "POST", "/auth/register", RegisterRequest{
		UserID: "admin", Passkey: "secret123", Name: "Admin", Role: "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/auth/login", LoginRequest{UserID: "admin", Passkey: "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	// The hash never leaves the server.
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestLoginWrongPasskey(t *testing.T) {
	db := setupTestDB(t)
	router := authRouter(db)

	doJSON(router, "POST", "/auth/register", RegisterRequest{UserID: "admin", Passkey: "secret123"})

	w := doJSON(router, "POST", "/auth/login", LoginRequest{UserID: "admin", Passkey: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	router := authRouter(db)

	w := doJSON(router, "POST", "/auth/login", LoginRequest{UserID: "ghost", Passkey: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateUser(t *testing.T) {
	db := setupTestDB(t)
	router := authRouter(db)

	req := RegisterRequest{UserID: "admin", Passkey: "secret123"}
	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/auth/register", req).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/auth/register", req).Code)
}

func TestRegisterMissingFields(t *testing.T) {
	db := setupTestDB(t)
	router := authRouter(db)

	w := doJSON(router, "POST", "/auth/register", RegisterRequest{UserID: "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
