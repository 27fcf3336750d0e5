package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/socialhub/models"
	"github.com/cppla/socialhub/utils"
)

const maxPlatformLen = 20

// InteractionController handles likes and shares.
type InteractionController struct {
	db *gorm.DB
}

// NewInteractionController creates a new InteractionController instance.
func NewInteractionController(db *gorm.DB) *InteractionController {
	return &InteractionController{db: db}
}

// LikePost toggles the caller's like on a post and reports the resulting state.
func (ic *InteractionController) LikePost(ctx *gin.Context) {
	post, ok := findPost(ctx, ic.db, false)
	if !ok {
		return
	}
	userID, _ := getUserID(ctx)

	var liked bool
	err := ic.db.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, PostID: post.ID}).Error
		default:
			return err
		}
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent toggle inserted the same like first
		liked, err = true, nil
	}
	if err != nil {
		serverError(ctx, 50040, "failed to toggle like", err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	utils.Success(ctx, gin.H{"message": message, "liked": liked})
}

// SharePost records a share of a post. Shares are never deduplicated.
func (ic *InteractionController) SharePost(ctx *gin.Context) {
	var req struct {
		Platform string `json:"platform"`
	}
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
			return
		}
	}

	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		platform = models.DefaultSharePlatform
	}
	if utf8.RuneCountInString(platform) > maxPlatformLen {
		utils.Error(ctx, http.StatusBadRequest, 40041, fmt.Sprintf("Platform must be at most %d characters", maxPlatformLen))
		return
	}

	post, ok := findPost(ctx, ic.db, false)
	if !ok {
		return
	}
	userID, _ := getUserID(ctx)

	share := models.Share{UserID: userID, PostID: post.ID, Platform: platform}
	if err := ic.db.WithContext(ctx.Request.Context()).Create(&share).Error; err != nil {
		serverError(ctx, 50041, "failed to share post", err)
		return
	}

	utils.Success(ctx, gin.H{"message": "Post shared on " + platform})
}
