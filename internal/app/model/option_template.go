package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SizeTemplateRow is one ordered row of a parent product's size table.
type SizeTemplateRow struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"index;not null" json:"product_id"`
	Label     string         `gorm:"not null" json:"label"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SizeTemplateRow) TableName() string {
	return "size_template_rows"
}

// CustomTemplateRow is one ordered row of a parent product's custom option table.
type CustomTemplateRow struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"index;not null" json:"product_id"`
	Label     string         `gorm:"not null" json:"label"`
	Value     string         `json:"value"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CustomTemplateRow) TableName() string {
	return "custom_template_rows"
}

// AxisOption is one coordinate value of the variant matrix: the display label
// shown in the matrix UI and the literal value persisted on the variant. Each
// template shape is normalized into this form by exactly one function below.
type AxisOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SizeAxisOption normalizes a size template row. The label carries the
// dimensions for display; the plain size label is what variants persist.
func SizeAxisOption(row SizeTemplateRow) AxisOption {
	label := row.Label
	if row.Width > 0 && row.Height > 0 {
		label = fmt.Sprintf("%s (%gx%g)", row.Label, row.Width, row.Height)
	}
	return AxisOption{Label: label, Value: row.Label}
}

// CustomAxisOption normalizes a custom template row. Rows without an explicit
// value fall back to their label.
func CustomAxisOption(row CustomTemplateRow) AxisOption {
	value := row.Value
	if value == "" {
		value = row.Label
	}
	return AxisOption{Label: row.Label, Value: value}
}

// ColorAxisOption normalizes a color entity; variants reference colors by name.
func ColorAxisOption(color Color) AxisOption {
	return AxisOption{Label: color.Name, Value: color.Name}
}
