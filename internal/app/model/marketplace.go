package model

import (
	"time"

	"gorm.io/gorm"
)

type MarketplaceType string

const (
	MarketplaceShopify  MarketplaceType = "shopify"
	MarketplaceTrendyol MarketplaceType = "trendyol"
	MarketplaceAmazon   MarketplaceType = "amazon"
	MarketplaceEtsy     MarketplaceType = "etsy"
)

type Marketplace struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Name      string          `gorm:"uniqueIndex;not null" json:"name"`
	Type      MarketplaceType `gorm:"type:varchar(30);not null" json:"type"`
	BaseURL   string          `json:"base_url"`
	Active    bool            `gorm:"default:true" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Marketplace) TableName() string {
	return "marketplaces"
}

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingActive   ListingStatus = "active"
	ListingArchived ListingStatus = "archived"
)

// Listing maps a variant to one marketplace. The SKU is the variant's IWASKU;
// that mapping is load-bearing for downstream label and order flows.
type Listing struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"index;not null;uniqueIndex:idx_listing_product_marketplace" json:"product_id"`
	MarketplaceID uint           `gorm:"index;not null;uniqueIndex:idx_listing_product_marketplace" json:"marketplace_id"`
	SKU           string         `gorm:"size:12;index;not null" json:"sku"`
	Status        ListingStatus  `gorm:"type:varchar(20);default:pending" json:"status"`
	RemoteID      string         `json:"remote_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product     Product     `gorm:"foreignKey:ProductID" json:"-"`
	Marketplace Marketplace `gorm:"foreignKey:MarketplaceID" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}
