package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/service"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"category_id"`
	Published   bool   `json:"published"`
}

type AddToSetRequest struct {
	MemberID uint `json:"member_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// ListProducts returns the filtered catalog listing
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		Search:          c.Query("search"),
		Sort:            service.ProductSort(c.Query("sort")),
		SortAscending:   c.Query("order") == "asc",
		IncludeVariants: c.Query("include_variants") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = offset
	}
	if typ := c.Query("type"); typ != "" {
		productType := model.ProductType(typ)
		opts.Type = &productType
	}
	if published := c.Query("published"); published != "" {
		value := published == "true"
		opts.Published = &value
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		id := uint(categoryID)
		opts.CategoryID = &id
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns one product with its variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ResolveProduct resolves a product by IWASKU or product code
// GET /api/v1/products/resolve?iwasku=...&code=...
func (ctrl *ProductController) ResolveProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var (
		product *model.Product
		err     error
	)
	switch {
	case c.Query("iwasku") != "":
		product, err = ctrl.productService.GetProductByIwasku(c.Query("iwasku"))
	case c.Query("code") != "":
		product, err = ctrl.productService.GetProductByCode(c.Query("code"))
	default:
		apperrors.BadRequest(c, apperrors.ValidationRequired, "iwasku or code query parameter is required")
		return
	}

	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to resolve product", err, nil)
		apperrors.InternalError(c, "failed to resolve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a parent product
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product := &model.Product{
		Identifier:  req.Identifier,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Published:   req.Published,
		Type:        model.TypeNormal,
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		switch {
		case errors.Is(err, service.ErrIdentifierExists):
			apperrors.Conflict(c, apperrors.ProductIdentifierExists, err.Error())
		case errors.Is(err, service.ErrCodeSpaceExhausted):
			log.Error("Code space exhausted while creating product", err, nil)
			apperrors.InternalError(c, "failed to create product")
		default:
			log.Error("Failed to create product", err, map[string]interface{}{
				"identifier": req.Identifier,
			})
			apperrors.InternalError(c, "failed to create product")
		}
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"iwasku":     product.Iwasku,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct updates a product's editable fields
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch product")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		CategoryID  *uint   `json:"category_id"`
		Published   *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Published != nil {
		product.Published = *req.Published
	}

	if err := ctrl.productService.UpdateProduct(product); err != nil {
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct soft-deletes a parent product
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		case errors.Is(err, service.ErrVariantDeleteOnly):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to delete product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "failed to delete product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// AddToSet adds a variant to a bundle product's composition list
// POST /api/v1/products/:id/set-items
func (ctrl *ProductController) AddToSet(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bundleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddToSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	if err := ctrl.productService.AddToSet(bundleID, req.MemberID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		case errors.Is(err, service.ErrSetMemberNotVariant):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		default:
			log.Error("Failed to add set item", err, map[string]interface{}{
				"bundle_id": bundleID,
				"member_id": req.MemberID,
			})
			apperrors.InternalError(c, "failed to add set item")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "set item added"})
}

// parseIDParam parses a numeric path parameter, responding with a validation
// error when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(value), true
}
