package policy

import (
	"time"

	"gorm.io/gorm"

	"github.com/leonidz/blogicum/models"
)

// PubliclyVisible reports whether a post passes the public-visibility
// predicate at the given instant: the post is published, its pub_date has
// arrived (closed bound, visible in the exact scheduled instant), and its
// category, when set, is published too.
//
// Categorized posts must have their Category association loaded; a missing
// association is treated as an unpublished category rather than leaking the
// post.
func PubliclyVisible(post *models.Post, now time.Time) bool {
	if !post.IsPublished {
		return false
	}
	if post.PubDate.After(now) {
		return false
	}
	if post.CategoryID != nil {
		if post.Category == nil || !post.Category.IsPublished {
			return false
		}
	}
	return true
}

// IsVisible applies the public predicate, except that the author always sees
// their own post regardless of publication state (draft preview).
func IsVisible(post *models.Post, viewer Viewer, now time.Time) bool {
	if viewer.Owns(post.AuthorID) {
		return true
	}
	return PubliclyVisible(post, now)
}

// VisibleScope is the SQL form of PubliclyVisible, for listing queries over
// the posts table. The same now value must be shared with any per-row
// IsVisible checks serving the same request.
func VisibleScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		published := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Category{}).
			Select("id").
			Where("is_published = ?", true)
		return db.Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("posts.category_id IS NULL OR posts.category_id IN (?)", published)
	}
}
