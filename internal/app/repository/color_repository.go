package repository

import (
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type ColorRepository interface {
	Create(color *model.Color) error
	FindAll() ([]model.Color, error)
	FindByID(id uint) (*model.Color, error)
	FindByName(name string) (*model.Color, error)
	FindByIDs(ids []uint) ([]model.Color, error)
	Delete(id uint) error
}

type colorRepository struct {
	db *gorm.DB
}

func NewColorRepository(db *gorm.DB) ColorRepository {
	return &colorRepository{db: db}
}

func (r *colorRepository) Create(color *model.Color) error {
	if err := r.db.Create(color).Error; err != nil {
		logger.Error("Failed to create color", err, map[string]interface{}{
			"name": color.Name,
		})
		return err
	}
	return nil
}

func (r *colorRepository) FindAll() ([]model.Color, error) {
	var colors []model.Color
	if err := r.db.Order("name ASC").Find(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

func (r *colorRepository) FindByID(id uint) (*model.Color, error) {
	var color model.Color
	if err := r.db.First(&color, id).Error; err != nil {
		return nil, err
	}
	return &color, nil
}

func (r *colorRepository) FindByName(name string) (*model.Color, error) {
	var color model.Color
	if err := r.db.Where("name = ?", name).First(&color).Error; err != nil {
		return nil, err
	}
	return &color, nil
}

func (r *colorRepository) FindByIDs(ids []uint) ([]model.Color, error) {
	var colors []model.Color
	if len(ids) == 0 {
		return colors, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

func (r *colorRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Color{}, id).Error; err != nil {
		logger.Error("Failed to delete color", err, map[string]interface{}{
			"color_id": id,
		})
		return err
	}
	return nil
}
