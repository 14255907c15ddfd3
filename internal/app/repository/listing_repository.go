package repository

import (
	"errors"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type ListingRepository interface {
	CreateMarketplace(mp *model.Marketplace) error
	FindMarketplaces() ([]model.Marketplace, error)
	FindMarketplaceByID(id uint) (*model.Marketplace, error)
	Upsert(listing *model.Listing) error
	FindByProduct(productID uint) ([]model.Listing, error)
	FindByMarketplace(marketplaceID uint) ([]model.Listing, error)
	FindByProductAndMarketplace(productID, marketplaceID uint) (*model.Listing, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) CreateMarketplace(mp *model.Marketplace) error {
	if err := r.db.Create(mp).Error; err != nil {
		logger.Error("Failed to create marketplace", err, map[string]interface{}{
			"name": mp.Name,
			"type": mp.Type,
		})
		return err
	}
	return nil
}

func (r *listingRepository) FindMarketplaces() ([]model.Marketplace, error) {
	var marketplaces []model.Marketplace
	if err := r.db.Order("name ASC").Find(&marketplaces).Error; err != nil {
		return nil, err
	}
	return marketplaces, nil
}

func (r *listingRepository) FindMarketplaceByID(id uint) (*model.Marketplace, error) {
	var mp model.Marketplace
	if err := r.db.First(&mp, id).Error; err != nil {
		return nil, err
	}
	return &mp, nil
}

func (r *listingRepository) Upsert(listing *model.Listing) error {
	var existing model.Listing
	err := r.db.Where("product_id = ? AND marketplace_id = ?", listing.ProductID, listing.MarketplaceID).
		First(&existing).Error
	switch {
	case err == nil:
		listing.ID = existing.ID
		listing.CreatedAt = existing.CreatedAt
		return r.db.Save(listing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.Create(listing).Error
	default:
		return err
	}
}

func (r *listingRepository) FindByProduct(productID uint) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.Preload("Marketplace").
		Where("product_id = ?", productID).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindByMarketplace(marketplaceID uint) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.Preload("Product").
		Where("marketplace_id = ?", marketplaceID).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindByProductAndMarketplace(productID, marketplaceID uint) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.Preload("Marketplace").
		Where("product_id = ? AND marketplace_id = ?", productID, marketplaceID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
