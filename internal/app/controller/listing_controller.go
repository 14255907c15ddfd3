package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/service"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/internal/middleware"
)

type ListingController struct {
	listingService service.ListingService
}

func NewListingController(listingService service.ListingService) *ListingController {
	return &ListingController{
		listingService: listingService,
	}
}

type RegisterMarketplaceRequest struct {
	Name    string                `json:"name" binding:"required"`
	Type    model.MarketplaceType `json:"type" binding:"required"`
	BaseURL string                `json:"base_url"`
}

type SyncListingsRequest struct {
	MarketplaceID uint `json:"marketplace_id" binding:"required"`
}

// ListMarketplaces returns the registered marketplaces
// GET /api/v1/marketplaces
func (ctrl *ListingController) ListMarketplaces(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	marketplaces, err := ctrl.listingService.ListMarketplaces()
	if err != nil {
		log.Error("Failed to list marketplaces", err, nil)
		apperrors.InternalError(c, "failed to list marketplaces")
		return
	}

	c.JSON(http.StatusOK, gin.H{"marketplaces": marketplaces})
}

// RegisterMarketplace registers a marketplace
// POST /api/v1/marketplaces
func (ctrl *ListingController) RegisterMarketplace(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterMarketplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	mp := &model.Marketplace{
		Name:    req.Name,
		Type:    req.Type,
		BaseURL: req.BaseURL,
		Active:  true,
	}
	if err := ctrl.listingService.RegisterMarketplace(mp); err != nil {
		info := apperrors.ParseError(err, "marketplace")
		if info.Code == apperrors.ResourceAlreadyExists {
			apperrors.Conflict(c, info.Code, info.Message)
			return
		}
		log.Error("Failed to register marketplace", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "failed to register marketplace")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"marketplace": mp})
}

// SyncListings upserts listings for every variant of the parent
// POST /api/v1/products/:id/listings/sync
func (ctrl *ListingController) SyncListings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SyncListingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	listings, err := ctrl.listingService.SyncParent(parentID, req.MarketplaceID)
	if err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			apperrors.NotFound(c, apperrors.MarketplaceNotFound, "marketplace not found")
			return
		}
		log.Error("Failed to sync listings", err, map[string]interface{}{
			"parent_id":      parentID,
			"marketplace_id": req.MarketplaceID,
		})
		apperrors.InternalError(c, "failed to sync listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetMarketplaceListings returns every listing held by one marketplace
// GET /api/v1/marketplaces/:id/listings
func (ctrl *ListingController) GetMarketplaceListings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	marketplaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listings, err := ctrl.listingService.ListingsByMarketplace(marketplaceID)
	if err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			apperrors.NotFound(c, apperrors.MarketplaceNotFound, "marketplace not found")
			return
		}
		log.Error("Failed to fetch marketplace listings", err, map[string]interface{}{
			"marketplace_id": marketplaceID,
		})
		apperrors.InternalError(c, "failed to fetch marketplace listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetListings returns one product's listings
// GET /api/v1/products/:id/listings
func (ctrl *ListingController) GetListings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listings, err := ctrl.listingService.ListingsByProduct(productID)
	if err != nil {
		log.Error("Failed to fetch listings", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "failed to fetch listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}
