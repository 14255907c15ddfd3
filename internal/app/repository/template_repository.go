package repository

import (
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// TemplateRepository manages the per-product size and custom option tables the
// variant matrix axes are sourced from.
type TemplateRepository interface {
	SizeRowsByProduct(productID uint) ([]model.SizeTemplateRow, error)
	CustomRowsByProduct(productID uint) ([]model.CustomTemplateRow, error)
	CreateSizeRow(row *model.SizeTemplateRow) error
	CreateCustomRow(row *model.CustomTemplateRow) error
	DeleteSizeRow(id uint) error
	DeleteCustomRow(id uint) error
	FindSizeRow(id uint) (*model.SizeTemplateRow, error)
	FindCustomRow(id uint) (*model.CustomTemplateRow, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) SizeRowsByProduct(productID uint) ([]model.SizeTemplateRow, error) {
	var rows []model.SizeTemplateRow
	err := r.db.Where("product_id = ?", productID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		logger.Error("Failed to load size template rows", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rows, nil
}

func (r *templateRepository) CustomRowsByProduct(productID uint) ([]model.CustomTemplateRow, error) {
	var rows []model.CustomTemplateRow
	err := r.db.Where("product_id = ?", productID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		logger.Error("Failed to load custom template rows", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rows, nil
}

func (r *templateRepository) CreateSizeRow(row *model.SizeTemplateRow) error {
	return r.db.Create(row).Error
}

func (r *templateRepository) CreateCustomRow(row *model.CustomTemplateRow) error {
	return r.db.Create(row).Error
}

func (r *templateRepository) DeleteSizeRow(id uint) error {
	return r.db.Delete(&model.SizeTemplateRow{}, id).Error
}

func (r *templateRepository) DeleteCustomRow(id uint) error {
	return r.db.Delete(&model.CustomTemplateRow{}, id).Error
}

func (r *templateRepository) FindSizeRow(id uint) (*model.SizeTemplateRow, error) {
	var row model.SizeTemplateRow
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *templateRepository) FindCustomRow(id uint) (*model.CustomTemplateRow, error) {
	var row model.CustomTemplateRow
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
