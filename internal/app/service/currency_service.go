package service

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrCurrencyNotFound = errors.New("currency rate not found")
	ErrRateFeedFailed   = errors.New("failed to fetch currency rates from feed")
)

const (
	latestRatesCacheKey = "currency:latest"
	latestRatesCacheTTL = time.Hour
)

// RateData is one currency's rate against TRY as delivered by the feed.
type RateData struct {
	Code string
	Name string
	Rate float64
}

// RateFetcher pulls the daily exchange rate table from an external source.
type RateFetcher interface {
	FetchDaily() ([]RateData, time.Time, error)
}

type CurrencyService interface {
	GetLatestRates() ([]model.CurrencyRate, error)
	GetRateByCode(code string) (*model.CurrencyRate, error)
	GetHistory(code string, days int) ([]model.CurrencyRate, error)
	UpdateRatesFromFeed() (int, error)
}

type currencyService struct {
	repo    repository.CurrencyRepository
	fetcher RateFetcher
	cache   *redis.Client // optional; nil disables caching
}

func NewCurrencyService(repo repository.CurrencyRepository, fetcher RateFetcher, cache *redis.Client) CurrencyService {
	return &currencyService{
		repo:    repo,
		fetcher: fetcher,
		cache:   cache,
	}
}

// GetLatestRates returns the newest rate per currency, read through the cache
// when one is configured.
func (s *currencyService) GetLatestRates() ([]model.CurrencyRate, error) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		cached, err := s.cache.Get(ctx, latestRatesCacheKey).Result()
		if err == nil {
			var rates []model.CurrencyRate
			if err := json.Unmarshal([]byte(cached), &rates); err == nil {
				return rates, nil
			}
			// Corrupt cache entry; fall through to the store.
		}
	}

	rates, err := s.repo.FindLatest()
	if err != nil {
		logger.Error("Failed to load latest currency rates", err)
		return nil, err
	}

	if s.cache != nil && len(rates) > 0 {
		if payload, err := json.Marshal(rates); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, latestRatesCacheKey, payload, latestRatesCacheTTL).Err(); err != nil {
				logger.Warn("Failed to cache latest currency rates", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
	return rates, nil
}

func (s *currencyService) GetRateByCode(code string) (*model.CurrencyRate, error) {
	rate, err := s.repo.FindLatestByCode(strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCurrencyNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (s *currencyService) GetHistory(code string, days int) ([]model.CurrencyRate, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.FindHistory(strings.ToUpper(code), since)
}

// UpdateRatesFromFeed pulls the daily table and upserts every rate, then
// drops the latest-rates cache entry. Returns the number of rates stored.
func (s *currencyService) UpdateRatesFromFeed() (int, error) {
	rates, sourceDate, err := s.fetcher.FetchDaily()
	if err != nil {
		logger.Error("Currency feed fetch failed", err)
		return 0, fmt.Errorf("%w: %v", ErrRateFeedFailed, err)
	}

	stored := 0
	for _, data := range rates {
		rate := &model.CurrencyRate{
			Code:       data.Code,
			Name:       data.Name,
			Rate:       data.Rate,
			Source:     "TCMB",
			SourceDate: sourceDate,
		}
		if err := s.repo.Upsert(rate); err != nil {
			logger.Error("Failed to store currency rate", err, map[string]interface{}{
				"code": data.Code,
			})
			continue
		}
		stored++
	}

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Del(ctx, latestRatesCacheKey).Err(); err != nil {
			logger.Warn("Failed to invalidate currency rate cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Currency rates updated from feed", map[string]interface{}{
		"stored":      stored,
		"source_date": sourceDate.Format("2006-01-02"),
	})
	return stored, nil
}

// tcmbFetcher reads the Turkish central bank daily XML feed.
type tcmbFetcher struct {
	client *resty.Client
	url    string
}

// NewTCMBFetcher builds the default RateFetcher against the TCMB daily feed.
func NewTCMBFetcher(feedURL string) RateFetcher {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "catalog-backend/1.0")
	return &tcmbFetcher{client: client, url: feedURL}
}

type tcmbDocument struct {
	XMLName    xml.Name       `xml:"Tarih_Date"`
	Date       string         `xml:"Date,attr"`
	Currencies []tcmbCurrency `xml:"Currency"`
}

type tcmbCurrency struct {
	Code         string `xml:"Kod,attr"`
	Name         string `xml:"CurrencyName"`
	Unit         string `xml:"Unit"`
	ForexSelling string `xml:"ForexSelling"`
}

func (f *tcmbFetcher) FetchDaily() ([]RateData, time.Time, error) {
	resp, err := f.client.R().Get(f.url)
	if err != nil {
		return nil, time.Time{}, err
	}
	if resp.StatusCode() != 200 {
		return nil, time.Time{}, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}
	return ParseTCMBFeed(resp.Body())
}

// ParseTCMBFeed decodes the TCMB daily XML document. Rows without a selling
// rate (metals, indicative-only codes) are skipped.
func ParseTCMBFeed(payload []byte) ([]RateData, time.Time, error) {
	var doc tcmbDocument
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding feed: %w", err)
	}

	sourceDate, err := time.Parse("01/02/2006", doc.Date)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing feed date %q: %w", doc.Date, err)
	}

	rates := make([]RateData, 0, len(doc.Currencies))
	for _, cur := range doc.Currencies {
		selling := strings.TrimSpace(cur.ForexSelling)
		if selling == "" {
			continue
		}
		rate, err := strconv.ParseFloat(selling, 64)
		if err != nil {
			continue
		}
		unit := 1.0
		if u, err := strconv.ParseFloat(strings.TrimSpace(cur.Unit), 64); err == nil && u > 0 {
			unit = u
		}
		rates = append(rates, RateData{
			Code: cur.Code,
			Name: cur.Name,
			Rate: rate / unit,
		})
	}
	return rates, sourceDate, nil
}
