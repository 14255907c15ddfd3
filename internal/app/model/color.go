package model

import (
	"time"

	"gorm.io/gorm"
)

// Color is a persisted variant axis value. Sizes and custom values are plain
// strings sourced from per-product template rows; colors are shared entities
// referenced by name.
type Color struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Color) TableName() string {
	return "colors"
}
