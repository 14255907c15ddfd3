package repository

import (
	"github.com/iwapim/catalog-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StickerRepository interface {
	Create(sticker *model.Sticker) error
	Save(sticker *model.Sticker) error
	FindByProduct(productID uint) (*model.Sticker, error)
	FindByBatch(batchID string) ([]model.Sticker, error)
	FindByParent(parentID uint) ([]model.Sticker, error)
}

type stickerRepository struct {
	db *gorm.DB
}

func NewStickerRepository(db *gorm.DB) StickerRepository {
	return &stickerRepository{db: db}
}

func (r *stickerRepository) Create(sticker *model.Sticker) error {
	return r.db.Create(sticker).Error
}

// Save updates the sticker row only; the preloaded product stays untouched.
func (r *stickerRepository) Save(sticker *model.Sticker) error {
	return r.db.Omit(clause.Associations).Save(sticker).Error
}

func (r *stickerRepository) FindByProduct(productID uint) (*model.Sticker, error) {
	var sticker model.Sticker
	err := r.db.Where("product_id = ?", productID).First(&sticker).Error
	if err != nil {
		return nil, err
	}
	return &sticker, nil
}

func (r *stickerRepository) FindByBatch(batchID string) ([]model.Sticker, error) {
	var stickers []model.Sticker
	err := r.db.Preload("Product").
		Where("batch_id = ?", batchID).
		Order("id ASC").
		Find(&stickers).Error
	if err != nil {
		return nil, err
	}
	return stickers, nil
}

// FindByParent returns the stickers of every variant under the parent product.
func (r *stickerRepository) FindByParent(parentID uint) ([]model.Sticker, error) {
	var stickers []model.Sticker
	err := r.db.Preload("Product").Preload("Product.VariationColor").
		Joins("JOIN products ON products.id = stickers.product_id").
		Where("products.parent_id = ?", parentID).
		Order("stickers.id ASC").
		Find(&stickers).Error
	if err != nil {
		return nil, err
	}
	return stickers, nil
}
