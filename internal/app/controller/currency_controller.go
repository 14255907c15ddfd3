package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/service"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/internal/middleware"
)

type CurrencyController struct {
	currencyService service.CurrencyService
}

func NewCurrencyController(currencyService service.CurrencyService) *CurrencyController {
	return &CurrencyController{
		currencyService: currencyService,
	}
}

// GetLatestRates returns the newest rate per currency
// GET /api/v1/currencies
func (ctrl *CurrencyController) GetLatestRates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	rates, err := ctrl.currencyService.GetLatestRates()
	if err != nil {
		log.Error("Failed to fetch currency rates", err, nil)
		apperrors.InternalError(c, "failed to fetch currency rates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// GetRateByCode returns the newest rate for one currency
// GET /api/v1/currencies/:code
func (ctrl *CurrencyController) GetRateByCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	rate, err := ctrl.currencyService.GetRateByCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrCurrencyNotFound) {
			apperrors.NotFound(c, apperrors.CurrencyNotFound, "currency rate not found")
			return
		}
		log.Error("Failed to fetch currency rate", err, map[string]interface{}{
			"code": c.Param("code"),
		})
		apperrors.InternalError(c, "failed to fetch currency rate")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

// GetHistory returns the recent rate history for one currency
// GET /api/v1/currencies/:code/history?days=30
func (ctrl *CurrencyController) GetHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	history, err := ctrl.currencyService.GetHistory(c.Param("code"), days)
	if err != nil {
		log.Error("Failed to fetch currency history", err, map[string]interface{}{
			"code": c.Param("code"),
		})
		apperrors.InternalError(c, "failed to fetch currency history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// RefreshRates pulls the daily feed on demand
// POST /api/v1/currencies/refresh
func (ctrl *CurrencyController) RefreshRates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stored, err := ctrl.currencyService.UpdateRatesFromFeed()
	if err != nil {
		log.Error("Failed to refresh currency rates", err, nil)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.CurrencyFeedFailed, "failed to refresh currency rates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": stored})
}
