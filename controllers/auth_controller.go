package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/socialhub/middleware"
	"github.com/cppla/socialhub/models"
	"github.com/cppla/socialhub/utils"
)

// SessionCookie describes how the session cookie is issued.
type SessionCookie struct {
	Name   string
	Secret string
	Secure bool
}

// AuthController handles registration, login and the session lifecycle.
type AuthController struct {
	db       *gorm.DB
	sessions utils.SessionStore
	cookie   SessionCookie
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, sessions utils.SessionStore, cookie SessionCookie) *AuthController {
	return &AuthController{db: db, sessions: sessions, cookie: cookie}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a local account and signs the new user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "Username, email and password are required")
		return
	}

	db := a.db.WithContext(ctx.Request.Context())

	taken, err := exists(db.Model(&models.User{}).Where("username = ?", username))
	if err != nil {
		serverError(ctx, 50001, "failed to check username", err)
		return
	}
	if taken {
		utils.Error(ctx, http.StatusBadRequest, 40003, "Username already exists")
		return
	}

	taken, err = exists(db.Model(&models.User{}).Where("email = ?", email))
	if err != nil {
		serverError(ctx, 50002, "failed to check email", err)
		return
	}
	if taken {
		utils.Error(ctx, http.StatusBadRequest, 40004, "Email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		serverError(ctx, 50003, "failed to hash password", err)
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			utils.Error(ctx, http.StatusBadRequest, 40005, "Username or email already exists")
			return
		}
		serverError(ctx, 50004, "failed to create user", err)
		return
	}

	if err := a.startSession(ctx, user.ID); err != nil {
		serverError(ctx, 50005, "failed to start session", err)
		return
	}

	utils.Created(ctx, gin.H{
		"message": "User created successfully",
		"user":    accountResponse(user),
	})
}

// Login verifies credentials and establishes a session.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.WithContext(ctx.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "Invalid credentials")
			return
		}
		serverError(ctx, 50006, "failed to load user", err)
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "Invalid credentials")
		return
	}

	if err := a.startSession(ctx, user.ID); err != nil {
		serverError(ctx, 50007, "failed to start session", err)
		return
	}

	utils.Success(ctx, gin.H{
		"message": "Login successful",
		"user":    accountResponse(user),
	})
}

// Logout ends the current session and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if sid, ok := middleware.CurrentSessionID(ctx); ok {
		if err := a.sessions.Delete(ctx.Request.Context(), sid); err != nil {
			serverError(ctx, 50008, "failed to end session", err)
			return
		}
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(a.cookie.Name, "", -1, "/", "", a.cookie.Secure, true)
	utils.Success(ctx, gin.H{"message": "Logged out"})
}

// Me returns the account behind the current session.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "Unauthorized")
		return
	}

	var user models.User
	if err := a.db.WithContext(ctx.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "User not found")
			return
		}
		serverError(ctx, 50009, "failed to load user", err)
		return
	}

	resp := accountResponse(user)
	resp["profile_picture"] = user.ProfilePicture
	resp["bio"] = user.Bio
	resp["created_at"] = user.CreatedAt
	utils.Success(ctx, resp)
}

func (a *AuthController) startSession(ctx *gin.Context, userID uint) error {
	sess, err := a.sessions.Create(ctx.Request.Context(), userID)
	if err != nil {
		return err
	}
	token, err := utils.SignSession(sess, a.cookie.Secret)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(a.cookie.Name, token, utils.SessionMaxAge(sess), "/", "", a.cookie.Secure, true)
	return nil
}

func accountResponse(user models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
}

// exists reports whether q matches at least one row.
func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
