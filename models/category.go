package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts under a unique slug. An unpublished category hides
// itself and, transitively, every post assigned to it.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeDelete detaches posts instead of deleting them.
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Post{}).Where("category_id = ?", c.ID).
		Update("category_id", gorm.Expr("NULL")).Error
}
