package repository

import (
	"fmt"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortCreatedAt ProductSort = "created_at"
)

type ProductFilter struct {
	Search          string
	Type            *model.ProductType
	CategoryID      *uint
	Published       *bool
	ParentID        *uint
	SortBy          ProductSort
	SortAscending   bool
	Limit           int
	Offset          int
	IncludeVariants bool
}

type ProductRepository interface {
	Create(product *model.Product) error
	Save(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindByIdentifier(identifier string) (*model.Product, error)
	FindByCode(code string) (*model.Product, error)
	FindByIwasku(iwasku string) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindVariantsByParent(parentID uint) ([]model.Product, error)
	CodeExists(code string) (bool, error)
	IwaskuExists(iwasku string) (bool, error)
	FindSetReferences(variantID uint) ([]model.SetItem, error)
	CountSetReferences(variantID uint) (int64, error)
	AddSetItem(item *model.SetItem) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"identifier": product.Identifier,
		"name":       product.Name,
		"type":       product.Type,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"identifier": product.Identifier,
			"name":       product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) Save(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to save product in database", err, map[string]interface{}{
			"product_id": product.ID,
			"identifier": product.Identifier,
		})
		return err
	}
	return nil
}

func (r *productRepository) baseQuery(includeVariants bool) *gorm.DB {
	query := r.db.Model(&model.Product{}).
		Preload("VariationColor").
		Preload("Category")
	if includeVariants {
		query = query.Preload("Variants").Preload("Variants.VariationColor")
	}
	return query
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(true).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIdentifier(identifier string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(false).Where("identifier = ?", identifier).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByCode(code string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(false).Where("product_code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIwasku(iwasku string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery(false).Where("iwasku = ?", iwasku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	query := r.baseQuery(filter.IncludeVariants)

	// Variant rows are hidden from listings unless explicitly requested or
	// targeted by a type filter.
	if !filter.IncludeVariants && filter.Type == nil {
		query = query.Where("products.type <> ?", model.TypeVariant)
	}
	if filter.Type != nil {
		query = query.Where("products.type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.Published != nil {
		query = query.Where("products.published = ?", *filter.Published)
	}
	if filter.ParentID != nil {
		query = query.Where("products.parent_id = ?", *filter.ParentID)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where(
			"products.name LIKE ? OR products.identifier LIKE ? OR products.iwasku LIKE ? OR products.product_code LIKE ?",
			like, like, like, like,
		)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortName:
		query = query.Order("products.name " + direction)
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("products.created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return products, nil
}

// FindVariantsByParent returns every variant of the parent, published or not.
// Reconciliation needs the unpublished ones to republish instead of recreate.
func (r *productRepository) FindVariantsByParent(parentID uint) ([]model.Product, error) {
	var variants []model.Product
	err := r.db.Model(&model.Product{}).
		Preload("VariationColor").
		Where("parent_id = ? AND type = ?", parentID, model.TypeVariant).
		Order("id ASC").
		Find(&variants).Error
	if err != nil {
		logger.Error("Failed to find variants by parent", err, map[string]interface{}{
			"parent_id": parentID,
		})
		return nil, err
	}
	return variants, nil
}

// CodeExists reports whether any product row, including soft-deleted and
// unpublished ones, already holds the code. Codes stay unique across the whole
// lifecycle.
func (r *productRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Product{}).
		Where("product_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) IwaskuExists(iwasku string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Product{}).
		Where("iwasku = ?", iwasku).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindSetReferences returns the bundle rows that reference the variant,
// with the owning bundle product loaded so callers can name the holder.
func (r *productRepository) FindSetReferences(variantID uint) ([]model.SetItem, error) {
	var items []model.SetItem
	err := r.db.Model(&model.SetItem{}).
		Preload("Bundle").
		Where("member_id = ?", variantID).
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find set references", err, map[string]interface{}{
			"variant_id": variantID,
		})
		return nil, err
	}
	return items, nil
}

func (r *productRepository) CountSetReferences(variantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.SetItem{}).
		Where("member_id = ?", variantID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepository) AddSetItem(item *model.SetItem) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to add set item", err, map[string]interface{}{
			"bundle_id": item.BundleID,
			"member_id": item.MemberID,
		})
		return err
	}
	return nil
}

// Delete soft-deletes a normal product. Variants are never deleted through
// this path; they are unpublished by the variant service.
func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
