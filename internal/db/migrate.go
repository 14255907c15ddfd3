package db

import (
	"errors"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Category{},
		&model.Brand{},
		&model.Color{},
		&model.Product{},
		&model.SetItem{},
		&model.SizeTemplateRow{},
		&model.CustomTemplateRow{},
		&model.Marketplace{},
		&model.Listing{},
		&model.Sticker{},
		&model.CurrencyRate{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedInitialData inserts the reference rows the application expects to exist.
func seedInitialData(db *gorm.DB) error {
	colors := []string{"Black", "White", "Red", "Blue", "Green", "Natural"}
	for _, name := range colors {
		var existing model.Color
		err := db.Where("name = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&model.Color{Name: name}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	marketplaces := []model.Marketplace{
		{Name: "Shopify", Type: model.MarketplaceShopify},
		{Name: "Trendyol", Type: model.MarketplaceTrendyol},
	}
	for _, mp := range marketplaces {
		var existing model.Marketplace
		err := db.Where("name = ?", mp.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&mp).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	return nil
}
