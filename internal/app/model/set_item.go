package model

import (
	"time"

	"gorm.io/gorm"
)

// SetItem is one row of a bundle product's composition list. While any set
// item references a variant, that variant cannot be unpublished.
type SetItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	BundleID  uint           `gorm:"index;not null" json:"bundle_id"` // owning bundle product
	MemberID  uint           `gorm:"index;not null" json:"member_id"` // referenced variant
	Quantity  int            `gorm:"default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Bundle Product `gorm:"foreignKey:BundleID" json:"-"`
	Member Product `gorm:"foreignKey:MemberID" json:"-"`
}

func (SetItem) TableName() string {
	return "set_items"
}
