package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is an optional descriptive attribute of a post.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"foreignKey:LocationID" json:"-"`
}

// BeforeDelete detaches posts instead of deleting them.
func (l *Location) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Post{}).Where("location_id = ?", l.ID).
		Update("location_id", gorm.Expr("NULL")).Error
}
