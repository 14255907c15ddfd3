package repository

import (
	"errors"
	"time"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type CurrencyRepository interface {
	Upsert(rate *model.CurrencyRate) error
	FindLatest() ([]model.CurrencyRate, error)
	FindLatestByCode(code string) (*model.CurrencyRate, error)
	FindHistory(code string, since time.Time) ([]model.CurrencyRate, error)
}

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

// Upsert writes one (code, source date) rate row, replacing the rate if the
// feed is re-ingested for the same day.
func (r *currencyRepository) Upsert(rate *model.CurrencyRate) error {
	var existing model.CurrencyRate
	err := r.db.Where("code = ? AND source_date = ?", rate.Code, rate.SourceDate).
		First(&existing).Error
	switch {
	case err == nil:
		rate.ID = existing.ID
		rate.CreatedAt = existing.CreatedAt
		return r.db.Save(rate).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.Create(rate).Error
	default:
		logger.Error("Failed to upsert currency rate", err, map[string]interface{}{
			"code": rate.Code,
		})
		return err
	}
}

// FindLatest returns the newest rate row per currency code.
func (r *currencyRepository) FindLatest() ([]model.CurrencyRate, error) {
	var rates []model.CurrencyRate
	subquery := r.db.Model(&model.CurrencyRate{}).
		Select("code, MAX(source_date) AS max_date").
		Group("code")
	err := r.db.Model(&model.CurrencyRate{}).
		Joins("JOIN (?) AS latest ON latest.code = currency_rates.code AND latest.max_date = currency_rates.source_date", subquery).
		Order("currency_rates.code ASC").
		Find(&rates).Error
	if err != nil {
		logger.Error("Failed to find latest currency rates", err)
		return nil, err
	}
	return rates, nil
}

func (r *currencyRepository) FindLatestByCode(code string) (*model.CurrencyRate, error) {
	var rate model.CurrencyRate
	err := r.db.Where("code = ?", code).
		Order("source_date DESC").
		First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *currencyRepository) FindHistory(code string, since time.Time) ([]model.CurrencyRate, error) {
	var rates []model.CurrencyRate
	err := r.db.Where("code = ? AND source_date >= ?", code, since).
		Order("source_date ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}
