package scheduler

import (
	"github.com/iwapim/catalog-backend/internal/app/service"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CurrencyScheduler refreshes the exchange rate table from the daily feed.
type CurrencyScheduler struct {
	cron            *cron.Cron
	currencyService service.CurrencyService
	spec            string
}

// NewCurrencyScheduler creates the scheduler. spec is a cron expression; the
// default refresh runs every weekday afternoon, after the central bank
// publishes the daily table.
func NewCurrencyScheduler(currencyService service.CurrencyService, spec string) *CurrencyScheduler {
	if spec == "" {
		spec = "30 15 * * 1-5"
	}
	return &CurrencyScheduler{
		cron:            cron.New(),
		currencyService: currencyService,
		spec:            spec,
	}
}

// Start registers and starts the refresh job.
func (s *CurrencyScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled currency rate refresh")

		stored, err := s.currencyService.UpdateRatesFromFeed()
		if err != nil {
			logger.Error("Scheduled currency rate refresh failed", err)
			return
		}

		logger.Info("Scheduled currency rate refresh finished", map[string]interface{}{
			"stored": stored,
		})
	})
	if err != nil {
		logger.Error("Failed to register currency refresh job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Currency scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop stops the scheduler.
func (s *CurrencyScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Currency scheduler stopped")
}
