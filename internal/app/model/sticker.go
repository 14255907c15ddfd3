package model

import (
	"time"

	"gorm.io/gorm"
)

// Sticker is a printed-label record for a variant. Labels carry the IWASKU and
// product code, so the snapshot is kept even if the product is later renamed.
type Sticker struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	ProductID   uint           `gorm:"index;not null" json:"product_id"`
	Iwasku      string         `gorm:"size:12;index;not null" json:"iwasku"`
	ProductCode string         `gorm:"size:5;not null" json:"product_code"`
	BatchID     string         `gorm:"index" json:"batch_id"`
	PrintedAt   *time.Time     `json:"printed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Sticker) TableName() string {
	return "stickers"
}
