package service

import (
	"errors"
	"testing"
	"time"

	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTCMBFeed = `<?xml version="1.0" encoding="UTF-8"?>
<Tarih_Date Tarih="29.08.2026" Date="08/29/2026" Bulten_No="2026/163">
	<Currency CrossOrder="0" Kod="USD" CurrencyCode="USD">
		<Unit>1</Unit>
		<Isim>ABD DOLARI</Isim>
		<CurrencyName>US DOLLAR</CurrencyName>
		<ForexBuying>41.1</ForexBuying>
		<ForexSelling>41.2</ForexSelling>
	</Currency>
	<Currency CrossOrder="9" Kod="JPY" CurrencyCode="JPY">
		<Unit>100</Unit>
		<Isim>JAPON YENI</Isim>
		<CurrencyName>JAPANESE YEN</CurrencyName>
		<ForexBuying>27.9</ForexBuying>
		<ForexSelling>28.0</ForexSelling>
	</Currency>
	<Currency CrossOrder="0" Kod="XDR" CurrencyCode="XDR">
		<Unit>1</Unit>
		<Isim>OZEL CEKME HAKKI</Isim>
		<CurrencyName>SPECIAL DRAWING RIGHT</CurrencyName>
		<ForexBuying></ForexBuying>
		<ForexSelling></ForexSelling>
	</Currency>
</Tarih_Date>`

type stubFetcher struct {
	rates []RateData
	date  time.Time
	err   error
}

func (f *stubFetcher) FetchDaily() ([]RateData, time.Time, error) {
	return f.rates, f.date, f.err
}

func setupCurrencyServiceTest(t *testing.T, fetcher RateFetcher) CurrencyService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	currencyRepo := repository.NewCurrencyRepository(testDB)
	return NewCurrencyService(currencyRepo, fetcher, nil)
}

func TestParseTCMBFeed(t *testing.T) {
	rates, sourceDate, err := ParseTCMBFeed([]byte(sampleTCMBFeed))
	require.NoError(t, err)

	assert.Equal(t, 2026, sourceDate.Year())
	assert.Equal(t, time.August, sourceDate.Month())
	assert.Equal(t, 29, sourceDate.Day())

	// XDR carries no selling rate and is skipped.
	require.Len(t, rates, 2)
	assert.Equal(t, "USD", rates[0].Code)
	assert.InDelta(t, 41.2, rates[0].Rate, 0.0001)

	// JPY is quoted per 100 units and is normalized to a single unit.
	assert.Equal(t, "JPY", rates[1].Code)
	assert.InDelta(t, 0.28, rates[1].Rate, 0.0001)
}

func TestParseTCMBFeed_Malformed(t *testing.T) {
	_, _, err := ParseTCMBFeed([]byte("not xml"))
	assert.Error(t, err)

	_, _, err = ParseTCMBFeed([]byte(`<Tarih_Date Date="bogus"></Tarih_Date>`))
	assert.Error(t, err)
}

func TestCurrencyService_UpdateRatesFromFeed(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		rates: []RateData{
			{Code: "USD", Name: "US DOLLAR", Rate: 41.2},
			{Code: "EUR", Name: "EURO", Rate: 44.7},
		},
		date: day,
	}
	currencyService := setupCurrencyServiceTest(t, fetcher)

	stored, err := currencyService.UpdateRatesFromFeed()
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	rates, err := currencyService.GetLatestRates()
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].Code)
	assert.Equal(t, "USD", rates[1].Code)
	assert.Equal(t, "TCMB", rates[0].Source)
}

func TestCurrencyService_UpdateRatesFromFeed_SameDayReplaces(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		rates: []RateData{{Code: "USD", Name: "US DOLLAR", Rate: 41.2}},
		date:  day,
	}
	currencyService := setupCurrencyServiceTest(t, fetcher)

	_, err := currencyService.UpdateRatesFromFeed()
	require.NoError(t, err)

	fetcher.rates = []RateData{{Code: "USD", Name: "US DOLLAR", Rate: 41.5}}
	_, err = currencyService.UpdateRatesFromFeed()
	require.NoError(t, err)

	rate, err := currencyService.GetRateByCode("usd")
	require.NoError(t, err)
	assert.InDelta(t, 41.5, rate.Rate, 0.0001)

	// Re-ingesting the same day replaces the row instead of duplicating it.
	history, err := currencyService.GetHistory("USD", 7)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCurrencyService_LatestPicksNewestPerCode(t *testing.T) {
	fetcher := &stubFetcher{
		rates: []RateData{{Code: "USD", Name: "US DOLLAR", Rate: 41.0}},
		date:  time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
	currencyService := setupCurrencyServiceTest(t, fetcher)

	_, err := currencyService.UpdateRatesFromFeed()
	require.NoError(t, err)

	fetcher.rates = []RateData{{Code: "USD", Name: "US DOLLAR", Rate: 41.2}}
	fetcher.date = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	_, err = currencyService.UpdateRatesFromFeed()
	require.NoError(t, err)

	rates, err := currencyService.GetLatestRates()
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.InDelta(t, 41.2, rates[0].Rate, 0.0001)
}

func TestCurrencyService_FeedFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	currencyService := setupCurrencyServiceTest(t, fetcher)

	_, err := currencyService.UpdateRatesFromFeed()
	assert.ErrorIs(t, err, ErrRateFeedFailed)
}

func TestCurrencyService_GetRateByCode_NotFound(t *testing.T) {
	currencyService := setupCurrencyServiceTest(t, &stubFetcher{})

	_, err := currencyService.GetRateByCode("USD")
	assert.ErrorIs(t, err, ErrCurrencyNotFound)
}
