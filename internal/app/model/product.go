package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductType string

const (
	TypeNormal  ProductType = "normal"
	TypeVariant ProductType = "variant"
)

// Product is either a sellable parent item (TypeNormal) or a concrete sellable
// variant of one (TypeVariant). Variants are distinguished from their siblings
// by the (color, size, custom) triple and are never hard-deleted once created:
// removal unpublishes them so historic IWASKUs stay resolvable.
type Product struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	Identifier  string      `gorm:"index" json:"identifier"` // business key, PREFIX-###[LETTER]
	Key         string      `gorm:"index" json:"key"`
	Name        string      `gorm:"not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	ProductCode string      `gorm:"uniqueIndex;size:5" json:"product_code"`
	Iwasku      string      `gorm:"uniqueIndex;size:12" json:"iwasku"`
	Type        ProductType `gorm:"type:varchar(20);default:normal;index" json:"type"`
	Published   bool        `gorm:"default:false;index" json:"published"`

	// Variant axes; empty on normal products. CustomField uses the empty
	// string as the "no custom value" sentinel.
	ParentID         *uint  `gorm:"index" json:"parent_id,omitempty"`
	VariationColorID *uint  `gorm:"index" json:"variation_color_id,omitempty"`
	VariationSize    string `json:"variation_size,omitempty"`
	CustomField      string `json:"custom_field,omitempty"`

	CategoryID *uint          `gorm:"index" json:"category_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent         *Product      `gorm:"foreignKey:ParentID" json:"-"`
	Variants       []Product     `gorm:"foreignKey:ParentID" json:"variants,omitempty"`
	VariationColor *Color        `gorm:"foreignKey:VariationColorID" json:"variation_color,omitempty"`
	Category       *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brands         []Brand       `gorm:"many2many:product_brands" json:"brands,omitempty"`
	Marketplaces   []Marketplace `gorm:"many2many:product_marketplaces" json:"marketplaces,omitempty"`
	SetItems       []SetItem     `gorm:"foreignKey:BundleID" json:"set_items,omitempty"`
	Listings       []Listing     `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// IsVariant reports whether the product is a concrete sellable variant.
func (p *Product) IsVariant() bool {
	return p.Type == TypeVariant
}
