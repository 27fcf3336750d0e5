package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/socialhub/models"
	"github.com/cppla/socialhub/utils"
)

// PostController manages the feed and CRUD operations for posts and comments.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// postItem is a feed entry: the post, its author and engagement seen by the viewer.
type postItem struct {
	ID            uint           `json:"id"`
	Content       string         `json:"content"`
	Image         *string        `json:"image"`
	CreatedAt     time.Time      `json:"created_at"`
	User          models.Summary `json:"user"`
	LikesCount    int64          `json:"likes_count"`
	CommentsCount int64          `json:"comments_count"`
	SharesCount   int64          `json:"shares_count"`
	IsLiked       bool           `json:"is_liked"`
	IsShared      bool           `json:"is_shared"`
}

type commentItem struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	User      models.Summary `json:"user"`
}

func newCommentItem(c models.Comment) commentItem {
	return commentItem{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt, User: c.User.Summary()}
}

// ListPosts returns the newest posts first, optionally filtered by a content search.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, perPage := parsePagination(ctx.Query("page"), ctx.Query("per_page"))
	// stored content went through Sanitize, so the term must too
	search := utils.Sanitize(ctx.Query("search"))
	db := p.db.WithContext(ctx.Request.Context())

	var total int64
	if err := feedQuery(db, search).Count(&total).Error; err != nil {
		serverError(ctx, 50020, "failed to count posts", err)
		return
	}

	var posts []models.Post
	err := feedQuery(db, search).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error
	if err != nil {
		serverError(ctx, 50021, "failed to list posts", err)
		return
	}

	viewer, _ := getUserID(ctx)
	items, err := p.enrich(ctx.Request.Context(), posts, viewer)
	if err != nil {
		serverError(ctx, 50022, "failed to load post stats", err)
		return
	}

	utils.Success(ctx, gin.H{
		"posts":        items,
		"total":        total,
		"pages":        pageCount(total, perPage),
		"current_page": page,
	})
}

// GetPost returns a single feed entry.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, ok := findPost(ctx, p.db, true)
	if !ok {
		return
	}
	viewer, _ := getUserID(ctx)
	items, err := p.enrich(ctx.Request.Context(), []models.Post{post}, viewer)
	if err != nil {
		serverError(ctx, 50023, "failed to load post stats", err)
		return
	}
	utils.Success(ctx, items[0])
}

// CreatePost allows authenticated users to publish a post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Content string  `json:"content"`
		Image   *string `json:"image"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "Content is required")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "Unauthorized")
		return
	}

	post := models.Post{
		UserID:  userID,
		Content: content,
		Image:   normalizeImage(req.Image),
	}
	if err := p.db.WithContext(ctx.Request.Context()).Create(&post).Error; err != nil {
		serverError(ctx, 50024, "failed to create post", err)
		return
	}

	utils.Created(ctx, gin.H{
		"message": "Post created successfully",
		"post": gin.H{
			"id":         post.ID,
			"content":    post.Content,
			"image":      post.Image,
			"created_at": post.CreatedAt,
		},
	})
}

// UpdatePost allows the author to change the content of their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := findPost(ctx, p.db, false)
	if !ok {
		return
	}

	userID, _ := getUserID(ctx)
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "Forbidden")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "Content is required")
		return
	}

	if err := p.db.WithContext(ctx.Request.Context()).Model(&post).Update("content", content).Error; err != nil {
		serverError(ctx, 50025, "failed to update post", err)
		return
	}

	utils.Success(ctx, gin.H{"message": "Post updated successfully"})
}

// DeletePost allows the author to delete their post together with its comments, likes and shares.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := findPost(ctx, p.db, false)
	if !ok {
		return
	}

	userID, _ := getUserID(ctx)
	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "Forbidden")
		return
	}

	err := p.db.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Comment{}, &models.Like{}, &models.Share{}} {
			if err := tx.Where("post_id = ?", post.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		serverError(ctx, 50026, "failed to delete post", err)
		return
	}

	utils.Success(ctx, gin.H{"message": "Post deleted successfully"})
}

// ListComments returns a post's comments, oldest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	post, ok := findPost(ctx, p.db, false)
	if !ok {
		return
	}

	var comments []models.Comment
	err := p.db.WithContext(ctx.Request.Context()).
		Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		serverError(ctx, 50027, "failed to list comments", err)
		return
	}

	items := make([]commentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, newCommentItem(c))
	}
	utils.Success(ctx, gin.H{"comments": items})
}

// CreateComment allows authenticated users to comment on an existing post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "Content is required")
		return
	}

	post, ok := findPost(ctx, p.db, false)
	if !ok {
		return
	}

	userID, _ := getUserID(ctx)
	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}

	db := p.db.WithContext(ctx.Request.Context())
	if err := db.Create(&comment).Error; err != nil {
		serverError(ctx, 50028, "failed to create comment", err)
		return
	}
	if err := db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		serverError(ctx, 50029, "failed to load comment", err)
		return
	}

	utils.Created(ctx, gin.H{
		"message": "Comment added successfully",
		"comment": newCommentItem(comment),
	})
}

// DeleteComment allows the comment owner to delete a comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "Comment not found")
		return
	}

	db := p.db.WithContext(ctx.Request.Context())
	var cmt models.Comment
	if err := db.First(&cmt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "Comment not found")
			return
		}
		serverError(ctx, 50030, "failed to load comment", err)
		return
	}

	userID, _ := getUserID(ctx)
	if cmt.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40320, "Forbidden")
		return
	}
	if err := db.Delete(&cmt).Error; err != nil {
		serverError(ctx, 50031, "failed to delete comment", err)
		return
	}
	utils.Success(ctx, gin.H{"message": "Comment deleted successfully"})
}

// findPost resolves the :id path parameter, writing the 404/500 response itself when it fails.
func findPost(ctx *gin.Context, db *gorm.DB, withAuthor bool) (models.Post, bool) {
	var post models.Post
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "Post not found")
		return post, false
	}

	q := db.WithContext(ctx.Request.Context())
	if withAuthor {
		q = q.Preload("User")
	}
	if err := q.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "Post not found")
			return post, false
		}
		serverError(ctx, 50032, "failed to load post", err)
		return post, false
	}
	return post, true
}

func feedQuery(db *gorm.DB, search string) *gorm.DB {
	q := db.Model(&models.Post{})
	if search != "" {
		q = q.Where("LOWER(content) LIKE LOWER(?)", "%"+search+"%")
	}
	return q
}

type postCount struct {
	PostID uint
	N      int64
}

// enrich attaches counts and viewer flags using one grouped query per table.
func (p *PostController) enrich(c context.Context, posts []models.Post, viewer uint) ([]postItem, error) {
	items := make([]postItem, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	db := p.db.WithContext(c)
	likes, err := countByPost(db, &models.Like{}, ids)
	if err != nil {
		return nil, err
	}
	comments, err := countByPost(db, &models.Comment{}, ids)
	if err != nil {
		return nil, err
	}
	shares, err := countByPost(db, &models.Share{}, ids)
	if err != nil {
		return nil, err
	}

	liked := map[uint]bool{}
	shared := map[uint]bool{}
	if viewer != 0 {
		if liked, err = viewerPosts(db, &models.Like{}, viewer, ids); err != nil {
			return nil, err
		}
		if shared, err = viewerPosts(db, &models.Share{}, viewer, ids); err != nil {
			return nil, err
		}
	}

	for _, post := range posts {
		items = append(items, postItem{
			ID:            post.ID,
			Content:       post.Content,
			Image:         post.Image,
			CreatedAt:     post.CreatedAt,
			User:          post.User.Summary(),
			LikesCount:    likes[post.ID],
			CommentsCount: comments[post.ID],
			SharesCount:   shares[post.ID],
			IsLiked:       liked[post.ID],
			IsShared:      shared[post.ID],
		})
	}
	return items, nil
}

func countByPost(db *gorm.DB, model interface{}, ids []uint) (map[uint]int64, error) {
	var rows []postCount
	err := db.Model(model).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.PostID] = r.N
	}
	return out, nil
}

func viewerPosts(db *gorm.DB, model interface{}, viewer uint, ids []uint) (map[uint]bool, error) {
	var hit []uint
	err := db.Model(model).
		Where("user_id = ? AND post_id IN ?", viewer, ids).
		Pluck("post_id", &hit).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(hit))
	for _, id := range hit {
		out[id] = true
	}
	return out, nil
}

func normalizeImage(image *string) *string {
	if image == nil {
		return nil
	}
	v := strings.TrimSpace(*image)
	if v == "" {
		return nil
	}
	return &v
}
