package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leonidz/blogicum/models"
	"github.com/leonidz/blogicum/policy"
	"github.com/leonidz/blogicum/utils"
)

const categoriesCacheKey = "cache:categories:published"

// CategoryController serves category and location browsing plus the
// administrative lifecycle of both. Unpublishing a category transitively
// hides its posts from the public listings.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// ListCategories returns the published categories, cached.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(categoriesCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var categories []models.Category
	if err := c.db.Where("is_published = ?", true).Order("title ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list categories")
		return
	}

	payload := gin.H{"items": categories}
	utils.CacheSetJSON(categoriesCacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListCategoryPosts returns the visible posts of a published category. An
// unpublished category answers exactly like an unknown slug, so its
// existence is not leaked.
func (c *CategoryController) ListCategoryPosts(ctx *gin.Context) {
	now := time.Now()
	slug := strings.TrimSpace(ctx.Param("slug"))

	var category models.Category
	err := c.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load category")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := c.db.Model(&models.Post{}).
		Where("posts.category_id = ?", category.ID).
		Scopes(policy.VisibleScope(now)).
		Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count posts")
		return
	}

	var posts []models.Post
	err = c.db.Model(&models.Post{}).
		Where("posts.category_id = ?", category.ID).
		Scopes(policy.VisibleScope(now)).
		Select(commentCountSelect).
		Preload("Author").Preload("Category").Preload("Location").
		Order("pub_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to list posts")
		return
	}

	utils.Success(ctx, gin.H{
		"category":   category,
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ListLocations returns the published locations, for the post form.
func (c *CategoryController) ListLocations(ctx *gin.Context) {
	var locations []models.Location
	if err := c.db.Where("is_published = ?", true).Order("name ASC").Find(&locations).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list locations")
		return
	}
	utils.Success(ctx, gin.H{"items": locations})
}

type categoryRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	Slug        string `json:"slug" binding:"required,min=1"`
	IsPublished *bool  `json:"is_published"`
}

// CreateCategory registers a new category (admin only).
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "admin privileges required")
		return
	}

	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	category := models.Category{
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		Slug:        strings.TrimSpace(req.Slug),
		IsPublished: true,
	}
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}

	if err := c.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to create category")
		return
	}

	utils.InvalidateByPrefix(categoriesCacheKey)
	utils.Success(ctx, gin.H{"category": category})
}

// UpdateCategory edits a category (admin only). Toggling is_published here
// is what shows or hides the category and all of its posts.
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "admin privileges required")
		return
	}

	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}

	var category models.Category
	if err := c.db.First(&category, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40431, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to load category")
		return
	}

	category.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	category.Description = utils.Sanitize(req.Description)
	category.Slug = strings.TrimSpace(req.Slug)
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}

	if err := c.db.Save(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to update category")
		return
	}

	utils.InvalidateByPrefix(categoriesCacheKey)
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category (admin only); its posts are detached,
// not deleted.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "admin privileges required")
		return
	}

	var category models.Category
	if err := c.db.First(&category, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40432, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to load category")
		return
	}

	if err := c.db.Delete(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to delete category")
		return
	}

	utils.InvalidateByPrefix(categoriesCacheKey)
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

type locationRequest struct {
	Name        string `json:"name" binding:"required,min=1"`
	IsPublished *bool  `json:"is_published"`
}

// CreateLocation registers a new location (admin only).
func (c *CategoryController) CreateLocation(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40331, "admin privileges required")
		return
	}

	var req locationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}

	location := models.Location{
		Name:        utils.Sanitize(strings.TrimSpace(req.Name)),
		IsPublished: true,
	}
	if req.IsPublished != nil {
		location.IsPublished = *req.IsPublished
	}

	if err := c.db.Create(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to create location")
		return
	}

	utils.Success(ctx, gin.H{"location": location})
}

// UpdateLocation edits a location (admin only).
func (c *CategoryController) UpdateLocation(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40331, "admin privileges required")
		return
	}

	var req locationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid request payload")
		return
	}

	var location models.Location
	if err := c.db.First(&location, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40433, "location not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load location")
		return
	}

	location.Name = utils.Sanitize(strings.TrimSpace(req.Name))
	if req.IsPublished != nil {
		location.IsPublished = *req.IsPublished
	}

	if err := c.db.Save(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update location")
		return
	}

	utils.Success(ctx, gin.H{"location": location})
}

// DeleteLocation removes a location (admin only); posts referencing it are
// detached, not deleted.
func (c *CategoryController) DeleteLocation(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40331, "admin privileges required")
		return
	}

	var location models.Location
	if err := c.db.First(&location, "id = ?", ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40434, "location not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to load location")
		return
	}

	if err := c.db.Delete(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to delete location")
		return
	}

	utils.Success(ctx, gin.H{"message": "location deleted"})
}
