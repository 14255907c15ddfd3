package model

import (
	"time"

	"gorm.io/gorm"
)

// CurrencyRate is one day's exchange rate for a currency against TRY,
// ingested from the central bank daily feed.
type CurrencyRate struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Code       string         `gorm:"size:3;not null;uniqueIndex:idx_rate_code_date" json:"code"`
	Name       string         `json:"name"`
	Rate       float64        `gorm:"not null" json:"rate"`
	Source     string         `json:"source"`
	SourceDate time.Time      `gorm:"uniqueIndex:idx_rate_code_date" json:"source_date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CurrencyRate) TableName() string {
	return "currency_rates"
}
