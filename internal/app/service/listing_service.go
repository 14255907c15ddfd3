package service

import (
	"errors"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrMarketplaceNotFound = errors.New("marketplace not found")

// ListingService manages the local marketplace listing state for variants.
// The SKU on every listing is the variant's IWASKU; pushing listings over the
// marketplace wire APIs happens in separate connector processes.
type ListingService interface {
	RegisterMarketplace(mp *model.Marketplace) error
	ListMarketplaces() ([]model.Marketplace, error)
	SyncParent(parentID, marketplaceID uint) ([]model.Listing, error)
	ListingsByProduct(productID uint) ([]model.Listing, error)
	ListingsByMarketplace(marketplaceID uint) ([]model.Listing, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	productRepo repository.ProductRepository
}

func NewListingService(listingRepo repository.ListingRepository, productRepo repository.ProductRepository) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		productRepo: productRepo,
	}
}

func (s *listingService) RegisterMarketplace(mp *model.Marketplace) error {
	return s.listingRepo.CreateMarketplace(mp)
}

func (s *listingService) ListMarketplaces() ([]model.Marketplace, error) {
	return s.listingRepo.FindMarketplaces()
}

// SyncParent upserts one listing per variant of the parent product: published
// variants get a pending/active listing keyed by their IWASKU, unpublished
// variants get their listing archived so the connector withdraws them.
func (s *listingService) SyncParent(parentID, marketplaceID uint) ([]model.Listing, error) {
	if _, err := s.listingRepo.FindMarketplaceByID(marketplaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketplaceNotFound
		}
		return nil, err
	}

	variants, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return nil, err
	}

	var synced []model.Listing
	for i := range variants {
		variant := &variants[i]

		status := model.ListingPending
		if !variant.Published {
			status = model.ListingArchived
			// Never open a listing for a variant that was unpublished
			// before one existed.
			if _, err := s.listingRepo.FindByProductAndMarketplace(variant.ID, marketplaceID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
		}

		listing := model.Listing{
			ProductID:     variant.ID,
			MarketplaceID: marketplaceID,
			SKU:           variant.Iwasku,
			Status:        status,
		}
		if err := s.listingRepo.Upsert(&listing); err != nil {
			logger.Error("Failed to upsert listing", err, map[string]interface{}{
				"variant_id":     variant.ID,
				"marketplace_id": marketplaceID,
			})
			return nil, err
		}
		synced = append(synced, listing)
	}

	logger.Info("Marketplace listings synced", map[string]interface{}{
		"parent_id":      parentID,
		"marketplace_id": marketplaceID,
		"count":          len(synced),
	})
	return synced, nil
}

func (s *listingService) ListingsByProduct(productID uint) ([]model.Listing, error) {
	return s.listingRepo.FindByProduct(productID)
}

func (s *listingService) ListingsByMarketplace(marketplaceID uint) ([]model.Listing, error) {
	if _, err := s.listingRepo.FindMarketplaceByID(marketplaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketplaceNotFound
		}
		return nil, err
	}
	return s.listingRepo.FindByMarketplace(marketplaceID)
}
