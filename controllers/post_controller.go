package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leonidz/blogicum/config"
	"github.com/leonidz/blogicum/middleware"
	"github.com/leonidz/blogicum/models"
	"github.com/leonidz/blogicum/policy"
	"github.com/leonidz/blogicum/utils"
)

// commentCountSelect annotates each post row with its number of comments.
const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// PostController manages posts and their comments. Every handler reads the
// clock once and evaluates all visibility and ownership checks against that
// single instant.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type postRequest struct {
	Title       string     `json:"title" binding:"required,min=1"`
	Text        string     `json:"text" binding:"required"`
	PubDate     *time.Time `json:"pub_date"`
	IsPublished *bool      `json:"is_published"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
	Image       string     `json:"image"`
	// Any author field submitted by the client is ignored: authorship is
	// taken from the verified token, never from the payload.
}

// ListPosts returns the public index: visible posts ordered by pub_date
// descending, annotated with comment counts.
func (p *PostController) ListPosts(ctx *gin.Context) {
	now := time.Now()
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := p.db.Model(&models.Post{}).Scopes(policy.VisibleScope(now)).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	var posts []models.Post
	err := p.db.Model(&models.Post{}).
		Scopes(policy.VisibleScope(now)).
		Select(commentCountSelect).
		Preload("Author").Preload("Category").Preload("Location").
		Order("pub_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetPost returns a single post with its comments. The author sees their own
// drafts and scheduled posts; everyone else gets the public predicate, and a
// hidden post answers exactly like a missing one.
func (p *PostController) GetPost(ctx *gin.Context) {
	now := time.Now()
	viewer := middleware.ViewerFromContext(ctx)
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	var post models.Post
	err := p.db.Preload("Author").Preload("Category").Preload("Location").
		First(&post, "posts.id = ?", postID).Error
	found := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	if !policy.ResolveDetail(&post, found, viewer, now) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	var comments []models.Comment
	if err := p.db.Where("post_id = ?", post.ID).
		Preload("Author").
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}
	post.Comments = comments
	post.CommentCount = int64(len(comments))

	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost allows authenticated users to create new posts. The author is
// always the authenticated viewer; pub_date may be in the future to schedule
// delayed publication.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := postFromRequest(req, userID)
	if post.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	if req.CategoryID != nil && !p.categoryExists(*req.CategoryID) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "unknown category")
		return
	}
	if req.LocationID != nil && !p.locationExists(*req.LocationID) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "unknown location")
		return
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost lets the author edit their post. Anyone else is sent to the
// post's detail view instead of receiving a hard error.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
		return
	}

	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		return
	}
	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	viewer := middleware.ViewerFromContext(ctx)
	if policy.AuthorizeMutation(policy.PostRecord(&post), viewer) != policy.Allow {
		p.redirectToDetail(ctx, post.ID)
		return
	}

	if req.CategoryID != nil && !p.categoryExists(*req.CategoryID) {
		utils.Error(ctx, http.StatusBadRequest, 40026, "unknown category")
		return
	}
	if req.LocationID != nil && !p.locationExists(*req.LocationID) {
		utils.Error(ctx, http.StatusBadRequest, 40027, "unknown location")
		return
	}

	post.Title = title
	post.Text = utils.Sanitize(req.Text)
	post.CategoryID = req.CategoryID
	post.LocationID = req.LocationID
	post.Image = strings.TrimSpace(req.Image)
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost lets the author delete their post; comments go with it. A
// non-author is redirected to the detail view, same as for edits.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
		return
	}
	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	viewer := middleware.ViewerFromContext(ctx)
	if policy.AuthorizeMutation(policy.PostRecord(&post), viewer) != policy.Allow {
		p.redirectToDetail(ctx, post.ID)
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// CreateComment allows any authenticated user to comment on an existing
// post. The comment author is taken from the token.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	text := utils.Sanitize(req.Text)
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "text cannot be empty")
		return
	}

	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	}
	var post models.Post
	if err := p.db.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     text,
	}

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create comment")
		return
	}

	if err := p.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment lets a comment's author edit it. Unlike posts, a denied
// comment mutation is a hard forbidden.
func (p *PostController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	text := utils.Sanitize(req.Text)
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40033, "text cannot be empty")
		return
	}

	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		return
	}
	var comment models.Comment
	if err := p.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load comment")
		return
	}

	viewer := middleware.ViewerFromContext(ctx)
	if policy.AuthorizeMutation(policy.CommentRecord(&comment), viewer) != policy.Allow {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only edit your own comment")
		return
	}

	comment.Text = text
	if err := p.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to update comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment lets a comment's author delete it.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
		return
	}
	var comment models.Comment
	if err := p.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load comment")
		return
	}

	viewer := middleware.ViewerFromContext(ctx)
	if policy.AuthorizeMutation(policy.CommentRecord(&comment), viewer) != policy.Allow {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only delete your own comment")
		return
	}

	if err := p.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// UploadImage stores a post illustration and returns its public URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40041, "file size exceeds 10MB")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create upload directory")
		return
	}

	fname := filepath.Base(header.Filename)
	if fname == "." || fname == "" {
		fname = "image"
	}
	safeName := fmt.Sprintf("%s_%d_%s", uuid.NewString(), userID, fname)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to write file")
		return
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40041, "file size exceeds 10MB")
		return
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s", now.Format("2006/01/02"), safeName)
	utils.Success(ctx, gin.H{"url": relURL})
}

// postFromRequest builds the record to store. Authorship comes exclusively
// from the caller-supplied token identity; nothing in the payload can set it.
func postFromRequest(req postRequest, authorID uint) models.Post {
	post := models.Post{
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Text:        utils.Sanitize(req.Text),
		AuthorID:    authorID,
		CategoryID:  req.CategoryID,
		LocationID:  req.LocationID,
		Image:       strings.TrimSpace(req.Image),
		IsPublished: true,
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}
	return post
}

// parseID rejects anything that is not a plain positive integer, so
// "1abc" cannot coerce to record 1 inside MySQL.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (p *PostController) redirectToDetail(ctx *gin.Context, postID uint) {
	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/api/v1/posts/%d", postID))
	ctx.Abort()
}

func (p *PostController) categoryExists(id uint) bool {
	var n int64
	p.db.Model(&models.Category{}).Where("id = ?", id).Count(&n)
	return n > 0
}

func (p *PostController) locationExists(id uint) bool {
	var n int64
	p.db.Model(&models.Location{}).Where("id = ?", id).Count(&n)
	return n > 0
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := config.Get().PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	unameVal, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return false
	}
	uname, _ := unameVal.(string)
	if uname == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
