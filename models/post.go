package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a publication created by a user. PubDate may be set in the future
// to schedule delayed publication; visibility is decided by the policy
// package, never stored.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	Image       string    `gorm:"size:512" json:"image"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Location    *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Comments    []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`

	// Annotated by listing queries, not a column.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// BeforeCreate defaults PubDate to the creation instant when not scheduled.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	return nil
}

// BeforeDelete cascades to the post's comments.
func (p *Post) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("post_id = ?", p.ID).Delete(&Comment{}).Error
}
