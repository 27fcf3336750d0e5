package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/socialhub/models"
	"github.com/cppla/socialhub/utils"
)

// UserController serves public profiles and profile edits.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new UserController instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// GetUser returns the public profile of a user.
func (u *UserController) GetUser(ctx *gin.Context) {
	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"profile_picture": user.ProfilePicture,
		"bio":             user.Bio,
		"created_at":      user.CreatedAt,
	})
}

// UpdateUser lets the session owner change their own username and bio.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	id, _ := parseID(ctx, "id")
	userID, ok := getUserID(ctx)
	if !ok || id != userID {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "Unauthorized")
		return
	}

	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}

	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	db := u.db.WithContext(ctx.Request.Context())
	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			utils.Error(ctx, http.StatusBadRequest, 40051, "Username cannot be empty")
			return
		}
		if username != user.Username {
			taken, err := exists(db.Model(&models.User{}).Where("username = ? AND id <> ?", username, user.ID))
			if err != nil {
				serverError(ctx, 50050, "failed to check username", err)
				return
			}
			if taken {
				utils.Error(ctx, http.StatusBadRequest, 40003, "Username already exists")
				return
			}
			updates["username"] = username
		}
	}
	if req.Bio != nil {
		updates["bio"] = utils.Sanitize(*req.Bio)
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.Error(ctx, http.StatusBadRequest, 40003, "Username already exists")
				return
			}
			serverError(ctx, 50051, "failed to update profile", err)
			return
		}
	}

	utils.Success(ctx, gin.H{"message": "Profile updated successfully"})
}

func (u *UserController) loadUser(ctx *gin.Context) (models.User, bool) {
	var user models.User
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40410, "User not found")
		return user, false
	}
	if err := u.db.WithContext(ctx.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "User not found")
			return user, false
		}
		serverError(ctx, 50052, "failed to get user", err)
		return user, false
	}
	return user, true
}
